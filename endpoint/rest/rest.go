/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package rest provides the HTTP control surface of a topology: list the
// components, add, inspect and remove operators, connect and disconnect them,
// drive clients and gateway streams, and follow operator events over a
// websocket.
//
//	restEndpoint := rest.New(rest.Config{Server: ":9090"}, topology)
//	if err := restEndpoint.Start(); err != nil {
//		log.Fatal(err)
//	}
package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
)

const (
	apiVersion  = "v1"
	apiBasePath = "/api/" + apiVersion

	ContentTypeKey  = "Content-Type"
	JsonContextType = "application/json"
)

// Config Rest 服务配置
type Config struct {
	// Server 服务地址，例如 :9090
	Server      string
	CertFile    string
	CertKeyFile string
	// AllowCors 是否允许跨域
	AllowCors bool
	// EventBufferSize events buffered per websocket subscriber, default 256
	EventBufferSize int
}

// Rest 控制面接入端点
type Rest struct {
	Config   Config
	Topology *engine.Topology
	Logger   types.Logger
	Upgrader websocket.Upgrader

	router *httprouter.Router
	hub    *eventHub

	lock     sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates the endpoint and registers its routes. Events of every operator
// of the topology are relayed to websocket subscribers.
func New(config Config, topology *engine.Topology) *Rest {
	r := &Rest{
		Config:   config,
		Topology: topology,
		Logger:   topology.Config().Logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return config.AllowCors
			},
		},
		hub: newEventHub(config.EventBufferSize),
	}
	if r.Logger == nil {
		r.Logger = types.DefaultLogger()
	}
	r.router = httprouter.New()
	r.routes()
	topology.OnEvent(r.hub.publish)
	return r
}

func (r *Rest) routes() {
	r.router.GET(apiBasePath+"/components", r.components)
	r.router.GET(apiBasePath+"/operators", r.listOperators)
	r.router.POST(apiBasePath+"/operators", r.addOperator)
	r.router.GET(apiBasePath+"/operators/:id", r.getOperator)
	r.router.DELETE(apiBasePath+"/operators/:id", r.removeOperator)
	r.router.POST(apiBasePath+"/operators/:id/send", r.send)
	r.router.POST(apiBasePath+"/operators/:id/streams/:requestId/start", r.startStream)
	r.router.POST(apiBasePath+"/operators/:id/streams/:requestId/close", r.closeStream)
	r.router.POST(apiBasePath+"/connections", r.connect)
	r.router.DELETE(apiBasePath+"/connections", r.disconnect)
	r.router.GET(apiBasePath+"/events", r.events)
	r.router.PanicHandler = func(w http.ResponseWriter, req *http.Request, e interface{}) {
		r.Logger.Printf("rest handler err :%v", e)
		w.WriteHeader(http.StatusInternalServerError)
	}
	if r.Config.AllowCors {
		r.router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Access-Control-Request-Method") != "" {
				header := w.Header()
				header.Set("Access-Control-Allow-Methods", "*")
				header.Set("Access-Control-Allow-Headers", "*")
				header.Set("Access-Control-Allow-Origin", "*")
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// Router returns the http handler.
func (r *Rest) Router() *httprouter.Router {
	return r.router
}

// Start listens on Config.Server and serves until Stop. It returns once the
// listener is ready.
func (r *Rest) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.server != nil {
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", r.Config.Server)
	if err != nil {
		return err
	}
	server := &http.Server{Handler: r.router, ReadHeaderTimeout: 10 * time.Second}
	if r.Config.CertKeyFile != "" && r.Config.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(r.Config.CertFile, r.Config.CertKeyFile)
		if err != nil {
			_ = ln.Close()
			return err
		}
		server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
		ln = tls.NewListener(ln, server.TLSConfig)
		r.Logger.Printf("starting server with TLS on %s", ln.Addr())
	} else {
		r.Logger.Printf("starting server on %s", ln.Addr())
	}
	r.server = server
	r.listener = ln
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.Printf("rest server stopped: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address, nil before Start.
func (r *Rest) Addr() net.Addr {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop closes the websocket subscribers and shuts the server down.
func (r *Rest) Stop() {
	r.hub.close()
	r.lock.Lock()
	server := r.server
	r.server, r.listener = nil, nil
	r.lock.Unlock()
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
