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
	"context"
	"testing"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/test/assert"
)

func testRegistry(t *testing.T) *OperatorRegistry {
	registry := new(OperatorRegistry)
	assert.Nil(t, registry.Register(&testNode{}))
	return registry
}

func TestRegistry(t *testing.T) {
	registry := testRegistry(t)

	t.Run("Register Components", func(t *testing.T) {
		assert.ErrorIs(t, registry.Register(&testNode{}), types.ErrComponentExists)
		assert.Equal(t, []string{"test"}, registry.Types())
	})

	t.Run("NewOperator", func(t *testing.T) {
		op, err := registry.NewOperator("test")
		assert.Nil(t, err)
		assert.Equal(t, "test", op.Type())
		_, err = registry.NewOperator("none")
		assert.ErrorIs(t, err, types.ErrComponentNotFound)
	})

	t.Run("CreateOperator", func(t *testing.T) {
		op, err := CreateOperator(registry, "test", "", types.NewConfig(), nil)
		assert.Nil(t, err)
		assert.True(t, op.Id() != "")
		assert.NotNil(t, op.GetPort(true))
		assert.NotNil(t, op.GetPort(false))

		op, err = CreateOperator(registry, "test", "n1", types.NewConfig(), types.Configuration{})
		assert.Nil(t, err)
		assert.Equal(t, "n1", op.Id())
	})

	t.Run("Unregister", func(t *testing.T) {
		assert.Nil(t, registry.Unregister("test"))
		assert.ErrorIs(t, registry.Unregister("test"), types.ErrComponentNotFound)
		assert.Equal(t, 0, len(registry.Types()))
	})

	t.Run("SafeOperatorSlice", func(t *testing.T) {
		var slice SafeOperatorSlice
		slice.Add(&testNode{}, &passNode{})
		list := slice.Components()
		assert.Equal(t, 2, len(list))
		list[0] = nil
		assert.NotNil(t, slice.Components()[0])
	})
}

func TestTopology(t *testing.T) {
	var events []types.Event
	topology := NewTopology(types.NewConfig(), testRegistry(t))
	assert.NotNil(t, topology.Registry())

	a, err := topology.AddOperator("a", "test", nil)
	assert.Nil(t, err)
	_, err = topology.AddOperator("a", "test", nil)
	assert.ErrorIs(t, err, types.ErrOperatorExists)
	_, err = topology.AddOperator("x", "unknown", nil)
	assert.ErrorIs(t, err, types.ErrComponentNotFound)

	topology.OnEvent(func(event types.Event) {
		events = append(events, event)
	})
	b, err := topology.AddOperator("b", "test", nil)
	assert.Nil(t, err)
	b.(*testNode).SetEndpoints([]types.Endpoint{types.NewEndpoint("users")})
	assert.Equal(t, []string{"a", "b"}, operatorIds(topology.Operators()))

	conn, err := topology.Connect("a", "b")
	assert.Nil(t, err)
	assert.True(t, a.GetPort(true).Has(conn))
	_, err = topology.Connect("a", "a")
	assert.ErrorIs(t, err, types.ErrConnectionRefused)
	_, err = topology.Connect("a", "none")
	assert.ErrorIs(t, err, types.ErrOperatorNotFound)

	// listeners reach operators added before and after OnEvent
	req := NewRequest(types.EndpointRef{Endpoint: types.NewEndpoint("users"), Method: types.GET}, conn, "o")
	assert.Nil(t, a.(*testNode).Send(context.Background(), conn, req))
	assert.Equal(t, 1, len(events))
	assert.Equal(t, "b", events[0].OperatorId)
	assert.Equal(t, types.EventDataReceived, events[0].Type)

	assert.Nil(t, topology.Disconnect("a", "b"))
	assert.ErrorIs(t, topology.Disconnect("a", "b"), types.ErrNotConnected)
	assert.True(t, conn.Closed())

	_, err = topology.Connect("a", "b")
	assert.Nil(t, err)
	assert.Nil(t, topology.RemoveOperator("b"))
	assert.ErrorIs(t, topology.RemoveOperator("b"), types.ErrOperatorNotFound)
	assert.Equal(t, 0, a.GetPort(true).Len())
	_, ok := topology.Get("b")
	assert.False(t, ok)

	topology.Close()
	assert.Equal(t, 0, len(topology.Operators()))
	assert.True(t, a.(*testNode).Destroyed())
}

func operatorIds(ops []Operator) []string {
	var ids []string
	for _, op := range ops {
		ids = append(ids, op.Id())
	}
	return ids
}
