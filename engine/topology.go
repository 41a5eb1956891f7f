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
	"fmt"
	"sync"

	"github.com/rulego/sysdesign/api/types"
)

// Topology 拓扑
// The set of operators of one diagram, addressed by id. It is the entry point
// the external collaborator uses to build and edit the diagram.
type Topology struct {
	config   types.Config
	registry *OperatorRegistry

	mu        sync.RWMutex
	operators map[string]Operator
	order     []string
	listeners []types.EventListener
}

// NewTopology creates an empty topology. A nil registry uses the default one.
func NewTopology(config types.Config, registry *OperatorRegistry) *Topology {
	if registry == nil {
		registry = Registry
	}
	return &Topology{
		config:    config,
		registry:  registry,
		operators: make(map[string]Operator),
	}
}

// Config returns the shared config.
func (t *Topology) Config() types.Config {
	return t.config
}

// Registry returns the component registry.
func (t *Topology) Registry() *OperatorRegistry {
	return t.registry
}

// AddOperator creates, initialises and adds an operator.
func (t *Topology) AddOperator(id, componentType string, configuration types.Configuration) (Operator, error) {
	if id != "" {
		if _, ok := t.Get(id); ok {
			return nil, fmt.Errorf("%w: id=%s", types.ErrOperatorExists, id)
		}
	}
	operator, err := CreateOperator(t.registry, componentType, id, t.config, configuration)
	if err != nil {
		return nil, err
	}
	if err := t.Add(operator); err != nil {
		operator.Destroy()
		return nil, err
	}
	return operator, nil
}

// Add adds an initialised operator.
func (t *Topology) Add(operator Operator) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.operators[operator.Id()]; ok {
		return fmt.Errorf("%w: id=%s", types.ErrOperatorExists, operator.Id())
	}
	t.operators[operator.Id()] = operator
	t.order = append(t.order, operator.Id())
	for _, l := range t.listeners {
		operator.OnEvent(l)
	}
	return nil
}

// Get returns the operator with the id.
func (t *Topology) Get(id string) (Operator, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	operator, ok := t.operators[id]
	return operator, ok
}

// Operators returns the operators in insertion order.
func (t *Topology) Operators() []Operator {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := make([]Operator, 0, len(t.order))
	for _, id := range t.order {
		list = append(list, t.operators[id])
	}
	return list
}

// OnEvent attaches listener to every current and future operator.
func (t *Topology) OnEvent(listener types.EventListener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, listener)
	ops := make([]Operator, 0, len(t.operators))
	for _, op := range t.operators {
		ops = append(ops, op)
	}
	t.mu.Unlock()
	for _, op := range ops {
		op.OnEvent(listener)
	}
}

// Connect connects the output of fromId to the input of toId. The input side
// initiates, so consumer linkage of the receiving operator applies.
func (t *Topology) Connect(fromId, toId string) (*Connection, error) {
	from, to, err := t.pair(fromId, toId)
	if err != nil {
		return nil, err
	}
	conn := to.ConnectTo(from, false, true)
	if conn == nil {
		return nil, fmt.Errorf("%w: %s -> %s", types.ErrConnectionRefused, fromId, toId)
	}
	return conn, nil
}

// Disconnect removes the connection from the output of fromId to the input of toId.
func (t *Topology) Disconnect(fromId, toId string) error {
	from, to, err := t.pair(fromId, toId)
	if err != nil {
		return err
	}
	out, in := from.GetPort(true), to.GetPort(false)
	if out == nil || in == nil {
		return types.ErrPortNotFound
	}
	conn := out.ConnectionTo(in)
	if conn == nil || !out.RemoveConnection(conn) {
		return fmt.Errorf("%w: %s -> %s", types.ErrNotConnected, fromId, toId)
	}
	return nil
}

// RemoveOperator destroys the operator and removes it.
func (t *Topology) RemoveOperator(id string) error {
	t.mu.Lock()
	operator, ok := t.operators[id]
	if ok {
		delete(t.operators, id)
		for i, v := range t.order {
			if v == id {
				t.order = append(t.order[:i], t.order[i+1:]...)
				break
			}
		}
	}
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: id=%s", types.ErrOperatorNotFound, id)
	}
	operator.Destroy()
	return nil
}

// Close destroys every operator.
func (t *Topology) Close() {
	for _, op := range t.Operators() {
		_ = t.RemoveOperator(op.Id())
	}
}

func (t *Topology) pair(fromId, toId string) (Operator, Operator, error) {
	from, ok := t.Get(fromId)
	if !ok {
		return nil, nil, fmt.Errorf("%w: id=%s", types.ErrOperatorNotFound, fromId)
	}
	to, ok := t.Get(toId)
	if !ok {
		return nil, nil, fmt.Errorf("%w: id=%s", types.ErrOperatorNotFound, toId)
	}
	return from, to, nil
}
