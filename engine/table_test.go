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
	"sync/atomic"
	"testing"

	"github.com/rulego/sysdesign/test/assert"
)

func TestConnectionTable(t *testing.T) {
	a := newTestNode(t, "a", true)
	b := newTestNode(t, "b", true)
	c := newTestNode(t, "c", true)
	ab := a.ConnectTo(b, true, false)
	ac := a.ConnectTo(c, true, false)

	table := NewConnectionTable()
	table.Set("r1", ab)
	table.Set("r2", ab)
	table.Set("r3", ac)
	assert.Equal(t, 3, table.Len())
	assert.True(t, table.Has("r1"))
	assert.Equal(t, 2, table.CountConnection(ab))

	conn, ok := table.Get("r3")
	assert.True(t, ok)
	assert.Equal(t, ac, conn)
	_, ok = table.Get("none")
	assert.False(t, ok)

	assert.False(t, table.SetIfAbsent("r1", ac))
	assert.True(t, table.SetIfAbsent("r4", ac))

	assert.False(t, table.CompareAndDelete("r1", ac))
	assert.True(t, table.CompareAndDelete("r1", ab))
	assert.False(t, table.Has("r1"))

	conn, ok = table.Take("r4")
	assert.True(t, ok)
	assert.Equal(t, ac, conn)
	_, ok = table.Take("r4")
	assert.False(t, ok)

	assert.Equal(t, []string{"r2"}, table.PurgeConnection(ab))
	assert.True(t, table.Delete("r3"))
	assert.False(t, table.Delete("r3"))
	assert.Equal(t, 0, table.Len())
}

func TestConnectionTableConcurrent(t *testing.T) {
	a := newTestNode(t, "a", true)
	b := newTestNode(t, "b", true)
	conn := a.ConnectTo(b, true, false)
	table := NewConnectionTable()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if table.SetIfAbsent("shared", conn) {
				atomic.AddInt32(&wins, 1)
			}
			table.Set(fmt.Sprintf("r%d", i), conn)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
	assert.Equal(t, 51, table.Len())
	assert.Equal(t, 51, len(table.PurgeConnection(conn)))
}
