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

// Package cache provides the in-memory key-value store backing cache operators.
package cache

import (
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache with per-item expiration.
// Expired items are invisible at once and removed by a background sweep,
// which runs only while expirable items exist.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]item
	gcInterval time.Duration
	stopGc     chan struct{}
	running    bool
}

type item struct {
	value interface{}
	// expiration unix nano, 0 never expires
	expiration int64
}

func (it item) expired(now int64) bool {
	return it.expiration > 0 && now > it.expiration
}

// NewMemoryCache creates a cache sweeping expired items every gcInterval, default 5 minutes.
func NewMemoryCache(gcInterval time.Duration) *MemoryCache {
	if gcInterval <= 0 {
		gcInterval = time.Minute * 5
	}
	return &MemoryCache{
		items:      make(map[string]item),
		gcInterval: gcInterval,
	}
}

// Set stores value under key. ttl is a duration string ("10m", "1h"); empty or zero never expires.
func (c *MemoryCache) Set(key string, value interface{}, ttl string) error {
	var expiration int64
	if ttl != "" {
		dur, err := time.ParseDuration(ttl)
		if err != nil {
			return err
		}
		if dur > 0 {
			expiration = time.Now().Add(dur).UnixNano()
		}
	}
	c.mu.Lock()
	c.items[key] = item{value: value, expiration: expiration}
	if expiration > 0 && !c.running {
		c.startGC()
	}
	c.mu.Unlock()
	return nil
}

// Get returns the value, nil if absent or expired.
func (c *MemoryCache) Get(key string) interface{} {
	v, _ := c.Lookup(key)
	return v
}

// Lookup returns the value and whether it is present and not expired.
func (c *MemoryCache) Lookup(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[key]
	if !ok || it.expired(time.Now().UnixNano()) {
		return nil, false
	}
	return it.value, true
}

// Has reports whether key is present and not expired.
func (c *MemoryCache) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// DeleteByPrefix removes every key with the prefix.
func (c *MemoryCache) DeleteByPrefix(prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// GetByPrefix returns the live values whose key has the prefix.
func (c *MemoryCache) GetByPrefix(prefix string) map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := time.Now().UnixNano()
	result := make(map[string]interface{})
	for k, v := range c.items {
		if strings.HasPrefix(k, prefix) && !v.expired(now) {
			result[k] = v.value
		}
	}
	return result
}

// Len returns the number of live items.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := time.Now().UnixNano()
	n := 0
	for _, v := range c.items {
		if !v.expired(now) {
			n++
		}
	}
	return n
}

// Clear removes every item and stops the sweep.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
	c.stopGC()
}

// startGC must be called with c.mu held.
func (c *MemoryCache) startGC() {
	c.running = true
	stop := make(chan struct{})
	c.stopGc = stop
	go func() {
		ticker := time.NewTicker(c.gcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !c.deleteExpired() {
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

// stopGC must be called with c.mu held.
func (c *MemoryCache) stopGC() {
	if c.running {
		close(c.stopGc)
		c.running = false
	}
}

// deleteExpired sweeps expired items. It reports whether the sweep should keep
// running, stopping it when no expirable item remains.
func (c *MemoryCache) deleteExpired() bool {
	now := time.Now().UnixNano()
	c.mu.Lock()
	defer c.mu.Unlock()
	expirable := false
	for k, v := range c.items {
		if v.expired(now) {
			delete(c.items, k)
		} else if v.expiration > 0 {
			expirable = true
		}
	}
	if !expirable {
		c.stopGC()
	}
	return expirable
}
