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
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
)

// ConsumerMode returns the consumer and subscriber flags.
func (a *API) ConsumerMode() (consumer, subscriber bool) {
	a.linkLock.Lock()
	defer a.linkLock.Unlock()
	return a.consumer, a.subscriber
}

// IsConsumer reports whether the input is wholly fed by consumable operators.
func (a *API) IsConsumer() bool {
	return isConsumer(a.InputPort.FarOperators())
}

// IsSubscriber reports whether a subscribable operator feeds the input.
func (a *API) IsSubscriber() bool {
	return isSubscriber(a.InputPort.FarOperators())
}

func isConsumer(upstream []engine.Operator) bool {
	if len(upstream) == 0 {
		return false
	}
	for _, op := range upstream {
		if !types.IsConsumableOperator(op) {
			return false
		}
	}
	return true
}

func isSubscriber(upstream []engine.Operator) bool {
	for _, op := range upstream {
		if types.IsSubscribableOperator(op) {
			return true
		}
	}
	return false
}

// GetConsumableEndpoints returns the endpoints of the consumable operators
// feeding the input, one per url.
func (a *API) GetConsumableEndpoints() []types.Endpoint {
	var endpoints []types.Endpoint
	for _, op := range a.InputPort.FarOperators() {
		if !types.IsConsumableOperator(op) {
			continue
		}
		for _, ep := range op.GetAvailableEndpoints() {
			if _, ok := types.FindEndpoint(endpoints, ep.Url); !ok {
				endpoints = append(endpoints, ep)
			}
		}
	}
	return endpoints
}

// OnConnectionUpdate recomputes the consumer linkage after an input connection
// was added or removed. A newly connected consumable operator turns the gateway
// into its consumer, dropping the other inputs; a gateway whose input is no
// longer wholly consumable reverts to the default endpoint.
func (a *API) OnConnectionUpdate(wasOutput bool) {
	if wasOutput {
		return
	}
	for _, conn := range a.reconcile() {
		// re-enters OnConnectionUpdate, which finds nothing left to do
		a.InputPort.RemoveConnection(conn)
	}
}

// reconcile updates the linkage state and returns the input connections to remove.
func (a *API) reconcile() []*engine.Connection {
	a.linkLock.Lock()
	defer a.linkLock.Unlock()

	conns := a.InputPort.Connections()
	live := make(map[*engine.Connection]bool, len(conns))
	for _, c := range conns {
		live[c] = true
	}
	for c := range a.adopted {
		if !live[c] {
			delete(a.adopted, c)
		}
	}

	var prune []*engine.Connection
	pruned := make(map[*engine.Connection]bool)
	for _, c := range conns {
		far := c.GetOtherPort(a.InputPort)
		if far == nil || a.adopted[c] || !types.IsConsumableOperator(far.Parent()) {
			continue
		}
		for _, bad := range a.initiateConsumer(c, far.Parent(), conns) {
			if !pruned[bad] {
				pruned[bad] = true
				prune = append(prune, bad)
			}
		}
	}

	var upstream []engine.Operator
	for _, c := range conns {
		if far := c.GetOtherPort(a.InputPort); far != nil && !pruned[c] {
			upstream = append(upstream, far.Parent())
		}
	}
	if a.consumer && !isConsumer(upstream) {
		for _, c := range conns {
			far := c.GetOtherPort(a.InputPort)
			if far != nil && !pruned[c] && types.IsConsumableOperator(far.Parent()) {
				pruned[c] = true
				prune = append(prune, c)
			}
		}
		a.consumer = false
		a.subscriber = false
		a.adopted = make(map[*engine.Connection]bool)
		a.SetEndpoints([]types.Endpoint{DefaultEndpoint()})
	}
	if a.subscriber && !isSubscriber(upstream) {
		a.subscriber = false
	}
	return prune
}

// initiateConsumer makes the gateway a consumer of upstream and returns the
// input connections that are not fed by consumable operators.
func (a *API) initiateConsumer(conn *engine.Connection, upstream engine.Operator, conns []*engine.Connection) []*engine.Connection {
	var bad []*engine.Connection
	for _, c := range conns {
		if far := c.GetOtherPort(a.InputPort); far != nil && !types.IsConsumableOperator(far.Parent()) {
			bad = append(bad, c)
		}
	}

	subscriber := types.IsSubscribableOperator(upstream)
	endpoints := upstream.GetAvailableEndpoints()
	switch {
	case len(endpoints) == 0:
		if subscriber && !a.consumer {
			a.SetEndpoints([]types.Endpoint{})
		}
	case a.hasEndpoint(endpoints[0].Url):
	default:
		adopted := endpoints[0].Copy()
		adopted.Actions = nil
		if subscriber {
			adopted = types.NewEndpoint(endpoints[0].Url)
		}
		if a.consumer {
			a.AddEndpoint(adopted)
		} else {
			a.SetEndpoints([]types.Endpoint{adopted})
		}
	}

	a.consumer = true
	if subscriber {
		a.subscriber = true
	}
	a.adopted[conn] = true
	return bad
}

func (a *API) hasEndpoint(url string) bool {
	_, ok := a.FindEndpoint(url)
	return ok
}
