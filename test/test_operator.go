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

package test

import (
	"context"
	"sync"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
)

var _ engine.Operator = (*ProbeOperator)(nil)

// ProbeOperator
// 只为测试使用的节点，记录收到的数据
// It advertises the given endpoints, records every message reaching either
// port and, when Answer is set, replies to requests arriving at its input.
type ProbeOperator struct {
	engine.EndpointOperator
	// Answer 是否回复收到的请求
	Answer bool
	// Status of the replies, default 200
	Status int
	// Consumable, Subscribable and ConsumerCapable declare the capabilities.
	Consumable      bool
	Subscribable    bool
	ConsumerCapable bool
	// Callback is invoked for every message, after it is recorded.
	Callback func(data *engine.RequestData, fromOutput bool)

	mu        sync.Mutex
	requests  []*engine.RequestData
	responses []*engine.RequestData
}

// NewProbe creates and initialises a probe with both ports multi.
func NewProbe(config types.Config, id string, endpoints ...types.Endpoint) *ProbeOperator {
	p := &ProbeOperator{Status: types.StatusOK}
	p.SetId(id)
	_ = p.Init(config, nil)
	p.SetEndpoints(endpoints)
	return p
}

func (p *ProbeOperator) New() engine.Operator {
	return &ProbeOperator{Status: types.StatusOK}
}

func (p *ProbeOperator) Type() string {
	return "probe"
}

func (p *ProbeOperator) Init(config types.Config, configuration types.Configuration) error {
	p.InputPort = engine.NewPort(p, false, true)
	p.OutputPort = engine.NewPort(p, true, true)
	p.Setup(p, config)
	return nil
}

func (p *ProbeOperator) IsConsumable() bool {
	return p.Consumable
}

func (p *ProbeOperator) IsSubscribable() bool {
	return p.Subscribable
}

func (p *ProbeOperator) CanConsume() bool {
	return p.ConsumerCapable
}

func (p *ProbeOperator) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	if fromOutput {
		p.responses = append(p.responses, data)
	} else {
		p.requests = append(p.requests, data)
	}
	p.mu.Unlock()
	p.FireReceiveData(data)
	if p.Callback != nil {
		p.Callback(data, fromOutput)
	}
	if !fromOutput && p.Answer && !data.Header.Stream {
		return p.SendData(ctx, data.Response(p.Status, false))
	}
	return nil
}

// Request sends a request from the first output connection and returns it.
func (p *ProbeOperator) Request(ctx context.Context, url string, method types.HTTPMethod, stream bool) (*engine.RequestData, error) {
	conns := p.OutputPort.Connections()
	if len(conns) == 0 {
		return nil, types.ErrNotConnected
	}
	ref := types.EndpointRef{Endpoint: types.NewEndpoint(url, method), Method: method}
	data := engine.NewRequest(ref, conns[0], p.Id())
	data.Header.Stream = stream
	return data, p.Send(ctx, conns[0], data)
}

// Resend sends a copy of data with another stream flag over the same connection.
func (p *ProbeOperator) Resend(ctx context.Context, data *engine.RequestData, stream bool) error {
	c := *data
	c.Header.Stream = stream
	return p.Send(ctx, c.Origin, &c)
}

// Requests returns the requests received at the input.
func (p *ProbeOperator) Requests() []*engine.RequestData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*engine.RequestData(nil), p.requests...)
}

// Responses returns the messages received at the output.
func (p *ProbeOperator) Responses() []*engine.RequestData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*engine.RequestData(nil), p.responses...)
}

// Reset forgets the recorded messages.
func (p *ProbeOperator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = nil
	p.responses = nil
}
