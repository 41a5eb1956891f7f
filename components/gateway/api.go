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

package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/maps"
)

// Registry 网关组件列表
var Registry = &engine.SafeOperatorSlice{}

func init() {
	Registry.Add(&API{})
}

// DefaultEndpointUrl is the route of a freshly created, or reset, gateway.
const DefaultEndpointUrl = "api/posts"

// DefaultEndpoint returns the built-in endpoint configuration.
func DefaultEndpoint() types.Endpoint {
	return types.NewEndpoint(DefaultEndpointUrl, types.GET, types.POST, types.PUT, types.DELETE)
}

// APIConfiguration 节点配置
type APIConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Endpoints exposed by the gateway; the default endpoint when omitted.
	Endpoints []types.Endpoint `json:"endpoints"`
	// AutoStream starts pushing frames as soon as a client opens a stream
	// on a server streaming endpoint. Otherwise StartStream must be called.
	AutoStream bool `json:"autoStream"`
}

// APIOptions is a snapshot of the gateway options.
type APIOptions struct {
	APIConfiguration
	IsConsumer   bool `json:"isConsumer"`
	IsSubscriber bool `json:"isSubscriber"`
}

// API 网关节点
// Requests arriving at the input are matched against its endpoints, forwarded
// to the downstream operators named by the endpoint actions and answered.
// Responses arriving at the output settle the requests it dispatched.
type API struct {
	engine.EndpointOperator
	config APIConfiguration

	linkLock sync.Mutex
	// consumer and subscriber are the linkage flags, adopted the input
	// connections whose endpoints were taken over.
	consumer   bool
	subscriber bool
	adopted    map[*engine.Connection]bool

	pendingLock sync.Mutex
	// pending holds the opening request of each open stream.
	pending map[string]pendingStream

	programs sync.Map
}

type pendingStream struct {
	data     *engine.RequestData
	endpoint types.Endpoint
}

func (a *API) New() engine.Operator {
	return &API{}
}

// Type 组件类型
func (a *API) Type() string {
	return "api"
}

// Init 初始化
func (a *API) Init(config types.Config, configuration types.Configuration) error {
	var c APIConfiguration
	if err := maps.Map2Struct(configuration, &c); err != nil {
		return err
	}
	if c.Title == "" {
		c.Title = "API"
	}
	if c.Endpoints == nil {
		c.Endpoints = []types.Endpoint{DefaultEndpoint()}
	}
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		withAllMethods(ep)
		for j := range ep.Actions {
			withAllMethods(&ep.Actions[j].Endpoint)
			if _, err := a.program(ep.Actions[j].Condition); err != nil {
				return err
			}
		}
	}
	a.config = c
	a.adopted = make(map[*engine.Connection]bool)
	a.pending = make(map[string]pendingStream)
	a.InputPort = engine.NewPort(a, false, true)
	a.OutputPort = engine.NewPort(a, true, true)
	a.Setup(a, config)
	a.SetEndpoints(c.Endpoints)
	return nil
}

// withAllMethods lets a configured endpoint without methods support all of them.
func withAllMethods(ep *types.Endpoint) {
	if len(ep.SupportedMethods) == 0 {
		ep.SupportedMethods = append([]types.HTTPMethod(nil), types.AllMethods...)
	}
}

// Options returns the current options.
func (a *API) Options() APIOptions {
	a.linkLock.Lock()
	consumer, subscriber := a.consumer, a.subscriber
	c := a.config
	a.linkLock.Unlock()
	c.Endpoints = a.Endpoints()
	return APIOptions{APIConfiguration: c, IsConsumer: consumer, IsSubscriber: subscriber}
}

// SetAutoStream switches automatic stream start.
func (a *API) SetAutoStream(on bool) {
	a.linkLock.Lock()
	defer a.linkLock.Unlock()
	a.config.AutoStream = on
}

func (a *API) autoStream() bool {
	a.linkLock.Lock()
	defer a.linkLock.Unlock()
	return a.config.AutoStream
}

// CanConsume a gateway may consume from consumable operators.
func (a *API) CanConsume() bool {
	return true
}

// ReceiveData 处理收到的数据
func (a *API) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if fromOutput {
		a.receiveResponse(data)
		return nil
	}
	if err := data.Validate(); err != nil {
		return err
	}
	target, ok := a.matchEndpoint(data)
	if !ok {
		a.Config().Debugf("api %s: no endpoint for %s, dropped", a.Id(), data.Url())
		return nil
	}
	a.FireReceiveData(data)

	if !a.Table.SetIfAbsent(data.RequestId, data.Origin) {
		// the request is already open: the client closes the stream
		if target.EndsStream(data.Header.Stream) {
			a.closeStream(data.RequestId)
			return nil
		}
	} else if data.Header.Stream && target.StreamCapable() {
		a.pendingLock.Lock()
		a.pending[data.RequestId] = pendingStream{data: data, endpoint: target}
		a.pendingLock.Unlock()
		if a.autoStream() {
			_ = a.StartStream(data.RequestId)
		}
		return nil
	}

	for _, action := range target.Actions {
		a.dispatch(ctx, data, action)
	}

	if consumer, _ := a.ConsumerMode(); consumer {
		// nobody is owed an answer
		a.Table.CompareAndDelete(data.RequestId, data.Origin)
		return nil
	}
	_ = a.SendData(ctx, data.Response(types.StatusOK, data.Header.Stream && target.StreamCapable()))
	return nil
}

func (a *API) receiveResponse(data *engine.RequestData) {
	if data == nil || data.ResponseId == "" {
		return
	}
	if _, ok := a.Table.Take(data.ResponseId); !ok {
		a.Config().Debugf("api %s: stale response %s, dropped", a.Id(), data.ResponseId)
		return
	}
	a.FireReceiveData(data)
}

// dispatch forwards data to the downstream endpoint of one action.
func (a *API) dispatch(ctx context.Context, data *engine.RequestData, action types.EndpointAction) {
	if !a.conditionHolds(action.Condition, data) {
		return
	}
	conn := a.actionConnection(action.Endpoint)
	if conn == nil {
		a.Config().Debugf("api %s: no connection advertises %s, action skipped", a.Id(), action.Endpoint.Url)
		return
	}
	endpoint := action.Endpoint.Copy()
	endpoint.Actions = nil
	request := data.Derive(types.EndpointRef{
		Endpoint: endpoint,
		Method:   action.Method.Resolve(data.Method()),
	}, conn)

	if action.Asynchronous {
		a.Config().Submit(func() {
			_ = a.Send(a.Context(), conn, request)
		})
		return
	}
	// registered before sending, the reply may arrive before Send returns
	a.Table.Set(request.RequestId, conn)
	if err := a.Send(ctx, conn, request); err != nil {
		a.Table.Delete(request.RequestId)
	}
}

// actionConnection returns the first output connection whose far operator
// advertises an endpoint equal to target.
func (a *API) actionConnection(target types.Endpoint) *engine.Connection {
	for _, conn := range a.OutputPort.Connections() {
		far := conn.GetOtherPort(a.OutputPort)
		if far == nil {
			continue
		}
		if types.ContainsEndpoint(engine.ResolveEndpoints(far.Parent()), target) {
			return conn
		}
	}
	return nil
}

func (a *API) matchEndpoint(data *engine.RequestData) (types.Endpoint, bool) {
	url := data.Url()
	if ep, ok := a.FindEndpoint(url); ok {
		return ep, true
	}
	if _, subscriber := a.ConsumerMode(); subscriber {
		if ep, ok := types.FindEndpoint(a.GetConsumableEndpoints(), url); ok {
			return ep.Copy(), true
		}
		if len(a.Endpoints()) == 0 {
			// topic-less subscription takes every topic
			return data.Header.Endpoint.Endpoint.Copy(), true
		}
	}
	return types.Endpoint{}, false
}

func (a *API) conditionHolds(condition string, data *engine.RequestData) bool {
	if strings.TrimSpace(condition) == "" {
		return true
	}
	program, err := a.program(condition)
	if err != nil {
		a.Config().Logf("api %s: condition %q: %v", a.Id(), condition, err)
		return false
	}
	out, err := vm.Run(program, map[string]interface{}{
		"method":   data.Method().String(),
		"url":      data.Url(),
		"stream":   data.Header.Stream,
		"originId": data.OriginId,
		"body":     data.Body,
	})
	if err != nil {
		a.Config().Debugf("api %s: condition %q: %v", a.Id(), condition, err)
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

func (a *API) program(condition string) (*vm.Program, error) {
	if strings.TrimSpace(condition) == "" {
		return nil, nil
	}
	if p, ok := a.programs.Load(condition); ok {
		return p.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, err
	}
	a.programs.Store(condition, program)
	return program, nil
}

// StartStream starts pushing frames for the stream opened by requestId. Every
// stream interval a frame is sent back to the client while the stream is open
// and its endpoint is still configured as a server streaming endpoint.
func (a *API) StartStream(requestId string) error {
	a.pendingLock.Lock()
	p, ok := a.pending[requestId]
	a.pendingLock.Unlock()
	if !ok {
		return types.ErrStreamNotFound
	}
	conn, ok := a.Table.Get(requestId)
	if !ok {
		a.dropPending(requestId)
		return types.ErrStreamNotFound
	}
	keep := func() bool {
		if !a.Table.Has(requestId) {
			a.dropPending(requestId)
			return false
		}
		ep, ok := a.FindEndpoint(p.endpoint.Url)
		return ok && ep.Equal(p.endpoint) && ep.ServerStreams()
	}
	a.Stream(requestId, conn, keep, func(ctx context.Context) error {
		err := a.SendData(ctx, p.data.Response(types.StatusOK, true))
		if err != nil {
			a.dropPending(requestId)
		}
		return err
	})
	return nil
}

// IsStreamOpen reports whether requestId has an open stream.
func (a *API) IsStreamOpen(requestId string) bool {
	a.pendingLock.Lock()
	_, ok := a.pending[requestId]
	a.pendingLock.Unlock()
	return ok && a.Table.Has(requestId)
}

func (a *API) closeStream(requestId string) {
	a.Table.Delete(requestId)
	a.StopStream(requestId)
	a.dropPending(requestId)
}

func (a *API) dropPending(requestId string) {
	a.pendingLock.Lock()
	delete(a.pending, requestId)
	a.pendingLock.Unlock()
}

// ReleaseConnection drops the table entries and open streams owed to conn.
func (a *API) ReleaseConnection(conn *engine.Connection) {
	for _, token := range a.Table.PurgeConnection(conn) {
		a.StopStream(token)
		a.dropPending(token)
	}
}
