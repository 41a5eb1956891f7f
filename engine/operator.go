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

// Package engine implements the operator graph: ports, connections, the
// request data flowing over them, the per-operator connection table and the
// stream driver. Operator variants live in the components packages and embed
// BaseOperator or EndpointOperator.
package engine

import (
	"context"

	"github.com/rulego/sysdesign/api/types"
)

// Operator 拓扑节点组件接口
// A node of the topology. Variants share this contract and are dispatched
// through it; capabilities (consumable, subscribable...) are opt-in interfaces
// declared in package types.
type Operator interface {
	// New creates a new, uninitialised instance of the same variant.
	New() Operator
	// Type is the registry name of the variant.
	Type() string
	// Init sets the operator up from the shared config and its own configuration.
	Init(config types.Config, configuration types.Configuration) error
	Id() string
	SetId(id string)
	Config() types.Config
	// GetPort returns the input or output port, nil if the variant has none.
	GetPort(output bool) *Port
	// CanConnectTo reports whether the operator accepts a connection between
	// its own port (output if connectingWithOutput) and port.
	CanConnectTo(port *Port, connectingWithOutput bool) bool
	// ConnectTo connects one of its ports to a port of other. Both operators must accept.
	ConnectTo(other Operator, connectingWithOutput, connectingToOutput bool) *Connection
	// OnConnectionUpdate fires after a connection of the operator was added or removed.
	OnConnectionUpdate(wasOutput bool)
	// GetAvailableEndpoints returns the endpoints the operator advertises.
	GetAvailableEndpoints() []types.Endpoint
	// ReceiveData is invoked by a connection on delivery.
	ReceiveData(ctx context.Context, data *RequestData, fromOutput bool) error
	// SendData emits a response or a stream frame.
	SendData(ctx context.Context, data *RequestData) error
	// OnEvent adds an event listener.
	OnEvent(listener types.EventListener)
	// Destroy removes every connection and stops the operator's tasks.
	Destroy()
}

// PassThrough is implemented by operators advertising the endpoints of the
// operators behind their downstream port, e.g. load balancers and caches.
type PassThrough interface {
	DownstreamPort() *Port
}

// ResolveEndpoints returns the endpoints op advertises, following pass-through
// operators downstream. Cycles are visited once.
func ResolveEndpoints(op Operator) []types.Endpoint {
	return resolveEndpoints(op, make(map[Operator]bool))
}

func resolveEndpoints(op Operator, visited map[Operator]bool) []types.Endpoint {
	if visited[op] {
		return nil
	}
	visited[op] = true
	pt, ok := op.(PassThrough)
	if !ok {
		return op.GetAvailableEndpoints()
	}
	port := pt.DownstreamPort()
	if port == nil {
		return nil
	}
	var endpoints []types.Endpoint
	for _, far := range port.FarOperators() {
		for _, ep := range resolveEndpoints(far, visited) {
			if !types.ContainsEndpoint(endpoints, ep) {
				endpoints = append(endpoints, ep)
			}
		}
	}
	return endpoints
}

// Advertises reports whether op advertises an endpoint with the url.
// Operators advertising nothing match only when acceptEmpty is set.
func Advertises(op Operator, url string, acceptEmpty bool) bool {
	endpoints := ResolveEndpoints(op)
	if len(endpoints) == 0 {
		return acceptEmpty
	}
	_, ok := types.FindEndpoint(endpoints, url)
	return ok
}
