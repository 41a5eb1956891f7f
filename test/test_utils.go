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
	"reflect"
	"testing"
	"time"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/test/assert"
)

// CreateAndInitOperator 创建并初始化一个节点实例
func CreateAndInitOperator(componentType string, configuration types.Configuration, registry *engine.SafeOperatorSlice) (engine.Operator, error) {
	r := new(engine.OperatorRegistry)
	for _, component := range registry.Components() {
		_ = r.Register(component)
	}
	return engine.CreateOperator(r, componentType, "", types.NewConfig(), configuration)
}

// OperatorNew 测试创建节点实例
func OperatorNew(t *testing.T, componentType string, target engine.Operator, registry *engine.SafeOperatorSlice) {
	var factory engine.Operator
	for _, component := range registry.Components() {
		if component.Type() == componentType {
			factory = component
		}
	}
	assert.NotNil(t, factory)
	assert.Equal(t, componentType, factory.Type())
	op := factory.New()
	assert.True(t, reflect.TypeOf(op) == reflect.TypeOf(target))
}

// WaitFor polls cond until it holds or timeout elapses, and reports the final result.
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond * 5)
	}
	return cond()
}

// Events collects operator events.
type Events struct {
	ch chan types.Event
}

// NewEvents creates a collector buffering up to size events.
func NewEvents(size int) *Events {
	return &Events{ch: make(chan types.Event, size)}
}

// Listener is the listener to attach with OnEvent.
func (e *Events) Listener() types.EventListener {
	return func(event types.Event) {
		select {
		case e.ch <- event:
		default:
		}
	}
}

// Drain returns the events received so far.
func (e *Events) Drain() []types.Event {
	var list []types.Event
	for {
		select {
		case ev := <-e.ch:
			list = append(list, ev)
		default:
			return list
		}
	}
}

// Count returns how many drained events have the type.
func Count(events []types.Event, eventType types.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}
