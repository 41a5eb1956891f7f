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

// Package client provides the client operator, the origin of requests.
//
// A client has a single output port. It sends requests on demand, or on a
// cron schedule once started, and reports the answers it gets back through
// data-received and status-code events.
//
// Configuration example:
//
//	{
//	  "url": "api/posts",
//	  "method": "GET",
//	  "protocol": "HTTP",
//	  "cron": "*/5 * * * * *"
//	}
package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/maps"
)

// Registry 客户端组件列表
var Registry = &engine.SafeOperatorSlice{}

func init() {
	Registry.Add(&Client{})
}

// ClientConfiguration 节点配置
type ClientConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Url requested by Request and the schedule, default api/posts
	Url string `json:"url"`
	// Method default GET
	Method types.HTTPMethod `json:"method"`
	// Protocol default HTTP
	Protocol types.Protocol `json:"protocol"`
	// GrpcMode of gRPC requests
	GrpcMode types.GRPCMode `json:"grpcMode"`
	// Body sent with each request
	Body string `json:"body"`
	// Cron schedule with seconds, e.g. "*/5 * * * * *". Empty disables it.
	Cron string `json:"cron"`
}

// Client 客户端节点
type Client struct {
	engine.BaseOperator
	config ClientConfiguration

	lock  sync.Mutex
	cron  *cron.Cron
	open  map[string]*engine.RequestData
	count int64
}

func (c *Client) New() engine.Operator {
	return &Client{}
}

// Type 组件类型
func (c *Client) Type() string {
	return "client"
}

// Init 初始化
func (c *Client) Init(config types.Config, configuration types.Configuration) error {
	conf := ClientConfiguration{Title: "Client", Url: "api/posts", Method: types.GET}
	if err := maps.Map2Struct(configuration, &conf); err != nil {
		return err
	}
	if conf.Cron != "" {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(conf.Cron); err != nil {
			return err
		}
	}
	c.config = conf
	c.open = make(map[string]*engine.RequestData)
	c.OutputPort = engine.NewPort(c, true, false)
	c.Setup(c, config)
	return nil
}

// Options returns the configuration.
func (c *Client) Options() ClientConfiguration {
	return c.config
}

// Send sends a request for url and returns its id. With stream set it opens
// a stream, kept until CloseStream.
func (c *Client) Send(ctx context.Context, url string, method types.HTTPMethod, stream bool) (string, error) {
	conns := c.OutputPort.Connections()
	if len(conns) == 0 {
		return "", types.ErrNotConnected
	}
	conn := conns[0]
	endpoint := types.NewEndpoint(url, method)
	endpoint.Protocol = c.config.Protocol
	endpoint.GrpcMode = c.config.GrpcMode
	data := engine.NewRequest(types.EndpointRef{Endpoint: endpoint, Method: method}, conn, c.Id())
	data.Header.Stream = stream
	data.Body = c.config.Body

	c.Table.Set(data.RequestId, conn)
	if stream {
		c.lock.Lock()
		c.open[data.RequestId] = data
		c.lock.Unlock()
	}
	if err := c.BaseOperator.Send(ctx, conn, data); err != nil {
		c.forget(data.RequestId)
		return data.RequestId, err
	}
	return data.RequestId, nil
}

// Request sends the configured request.
func (c *Client) Request(ctx context.Context) (string, error) {
	return c.Send(ctx, c.config.Url, c.config.Method, false)
}

// CloseStream ends a stream opened by Send.
func (c *Client) CloseStream(ctx context.Context, requestId string) error {
	c.lock.Lock()
	data, ok := c.open[requestId]
	c.lock.Unlock()
	if !ok {
		return types.ErrStreamNotFound
	}
	c.forget(requestId)
	closing := *data
	closing.Header.Stream = false
	if !c.OutputPort.Has(closing.Origin) {
		return types.ErrConnectionClosed
	}
	return c.BaseOperator.Send(ctx, closing.Origin, &closing)
}

// OpenStreams returns the number of streams opened and not closed.
func (c *Client) OpenStreams() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.open)
}

// Received returns the number of answers received.
func (c *Client) Received() int64 {
	return atomic.LoadInt64(&c.count)
}

func (c *Client) forget(requestId string) {
	c.Table.Delete(requestId)
	c.lock.Lock()
	delete(c.open, requestId)
	c.lock.Unlock()
}

// ReceiveData accepts the answers to its requests.
func (c *Client) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if !c.Table.Has(data.ResponseId) {
		c.Config().Debugf("client %s: stale response %s, dropped", c.Id(), data.ResponseId)
		return nil
	}
	if !data.Header.Stream {
		c.forget(data.ResponseId)
	}
	atomic.AddInt64(&c.count, 1)
	c.FireReceiveData(data)
	c.FireStatusCode(data, data.Status)
	return nil
}

// ReleaseConnection forgets the requests sent over conn.
func (c *Client) ReleaseConnection(conn *engine.Connection) {
	for _, token := range c.Table.PurgeConnection(conn) {
		c.lock.Lock()
		delete(c.open, token)
		c.lock.Unlock()
	}
}

// Start runs the cron schedule.
func (c *Client) Start() error {
	if c.config.Cron == "" {
		return errors.New("client has no cron schedule")
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cron != nil {
		return nil
	}
	c.cron = cron.New(cron.WithSeconds())
	if _, err := c.cron.AddFunc(c.config.Cron, func() {
		if _, err := c.Request(c.Context()); err != nil {
			c.Config().Debugf("client %s: scheduled request: %v", c.Id(), err)
		}
	}); err != nil {
		c.cron = nil
		return err
	}
	c.cron.Start()
	return nil
}

// Stop stops the cron schedule.
func (c *Client) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cron != nil {
		c.cron.Stop()
		c.cron = nil
	}
}

// Destroy 销毁
func (c *Client) Destroy() {
	c.Stop()
	c.BaseOperator.Destroy()
}
