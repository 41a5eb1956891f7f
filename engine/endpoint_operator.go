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

package engine

import (
	"sync"

	"github.com/rulego/sysdesign/api/types"
)

// EndpointOperator is an operator owning a list of endpoints. The list is
// edited by the owner's options editor and read concurrently by request handling.
type EndpointOperator struct {
	BaseOperator

	endpointsLock sync.RWMutex
	endpoints     []types.Endpoint
}

// Endpoints returns a copy of the endpoint list.
func (e *EndpointOperator) Endpoints() []types.Endpoint {
	e.endpointsLock.RLock()
	defer e.endpointsLock.RUnlock()
	out := make([]types.Endpoint, len(e.endpoints))
	for i, ep := range e.endpoints {
		out[i] = ep.Copy()
	}
	return out
}

// SetEndpoints replaces the endpoint list.
func (e *EndpointOperator) SetEndpoints(endpoints []types.Endpoint) {
	cp := make([]types.Endpoint, len(endpoints))
	for i, ep := range endpoints {
		cp[i] = ep.Copy()
	}
	e.endpointsLock.Lock()
	defer e.endpointsLock.Unlock()
	e.endpoints = cp
}

// AddEndpoint appends an endpoint.
func (e *EndpointOperator) AddEndpoint(endpoint types.Endpoint) {
	e.endpointsLock.Lock()
	defer e.endpointsLock.Unlock()
	e.endpoints = append(e.endpoints, endpoint.Copy())
}

// RemoveEndpoint removes the first endpoint with the url.
func (e *EndpointOperator) RemoveEndpoint(url string) bool {
	e.endpointsLock.Lock()
	defer e.endpointsLock.Unlock()
	for i, ep := range e.endpoints {
		if ep.Url == url {
			e.endpoints = append(e.endpoints[:i], e.endpoints[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateEndpoint edits the first endpoint with the url in place.
func (e *EndpointOperator) UpdateEndpoint(url string, update func(endpoint *types.Endpoint)) bool {
	e.endpointsLock.Lock()
	defer e.endpointsLock.Unlock()
	for i := range e.endpoints {
		if e.endpoints[i].Url == url {
			update(&e.endpoints[i])
			return true
		}
	}
	return false
}

// FindEndpoint returns the endpoint with the url.
func (e *EndpointOperator) FindEndpoint(url string) (types.Endpoint, bool) {
	e.endpointsLock.RLock()
	defer e.endpointsLock.RUnlock()
	ep, ok := types.FindEndpoint(e.endpoints, url)
	if !ok {
		return ep, false
	}
	return ep.Copy(), true
}

func (e *EndpointOperator) GetAvailableEndpoints() []types.Endpoint {
	return e.Endpoints()
}
