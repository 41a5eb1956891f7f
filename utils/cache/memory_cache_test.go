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

package cache

import (
	"testing"
	"time"

	"github.com/rulego/sysdesign/test/assert"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Millisecond * 50)

	t.Run("SetAndGet", func(t *testing.T) {
		assert.Nil(t, c.Set("api/posts", "v1", "1m"))
		assert.Equal(t, "v1", c.Get("api/posts"))
		assert.Nil(t, c.Set("api/users", "v2", ""))
		assert.Equal(t, "v2", c.Get("api/users"))
		assert.Nil(t, c.Get("api/none"))
		assert.NotNil(t, c.Set("bad", "v", "1x"))
	})

	t.Run("Expire", func(t *testing.T) {
		assert.Nil(t, c.Set("short", "v", "100ms"))
		assert.True(t, c.Has("short"))
		time.Sleep(time.Millisecond * 200)
		assert.False(t, c.Has("short"))
		_, ok := c.Lookup("short")
		assert.False(t, ok)
	})

	t.Run("Prefix", func(t *testing.T) {
		_ = c.Set("table/a", 1, "")
		_ = c.Set("table/b", 2, "")
		assert.Equal(t, 2, len(c.GetByPrefix("table/")))
		_ = c.DeleteByPrefix("table/")
		assert.Equal(t, 0, len(c.GetByPrefix("table/")))
	})

	t.Run("Clear", func(t *testing.T) {
		_ = c.Set("k", 1, "1m")
		assert.True(t, c.Len() > 0)
		c.Clear()
		assert.Equal(t, 0, c.Len())
	})
}

func TestSweepStops(t *testing.T) {
	c := NewMemoryCache(time.Millisecond * 20)
	_ = c.Set("k", 1, "30ms")
	time.Sleep(time.Millisecond * 150)
	c.mu.RLock()
	running := c.running
	n := len(c.items)
	c.mu.RUnlock()
	assert.False(t, running)
	assert.Equal(t, 0, n)
}
