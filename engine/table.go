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
)

// ConnectionTable 连接表
// Maps a correlation token (request id or response id) to the connection owed
// the answer. It is the only state shared by concurrent requests of an operator.
type ConnectionTable struct {
	mu      sync.Mutex
	entries map[string]*Connection
}

// NewConnectionTable creates an empty table.
func NewConnectionTable() *ConnectionTable {
	return &ConnectionTable{entries: make(map[string]*Connection)}
}

// Set records the connection for token, replacing any previous entry.
func (t *ConnectionTable) Set(token string, conn *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[token] = conn
}

// SetIfAbsent records the connection only when token has no entry.
// It returns false when an entry already existed.
func (t *ConnectionTable) SetIfAbsent(token string, conn *Connection) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[token]; ok {
		return false
	}
	t.entries[token] = conn
	return true
}

// Get returns the connection recorded for token.
func (t *ConnectionTable) Get(token string) (*Connection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn, ok := t.entries[token]
	return conn, ok
}

// Has reports whether token has an entry.
func (t *ConnectionTable) Has(token string) bool {
	_, ok := t.Get(token)
	return ok
}

// Delete removes the entry and reports whether it existed.
func (t *ConnectionTable) Delete(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[token]
	delete(t.entries, token)
	return ok
}

// Take removes and returns the entry in one step, so two concurrent
// answers to the same token cannot both claim it.
func (t *ConnectionTable) Take(token string) (*Connection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn, ok := t.entries[token]
	if ok {
		delete(t.entries, token)
	}
	return conn, ok
}

// CompareAndDelete removes the entry only if it still points at conn.
func (t *ConnectionTable) CompareAndDelete(token string, conn *Connection) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.entries[token]; ok && cur == conn {
		delete(t.entries, token)
		return true
	}
	return false
}

// PurgeConnection removes every entry pointing at conn and returns their tokens.
func (t *ConnectionTable) PurgeConnection(conn *Connection) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var tokens []string
	for token, c := range t.entries {
		if c == conn {
			tokens = append(tokens, token)
			delete(t.entries, token)
		}
	}
	return tokens
}

// CountConnection returns the number of entries pointing at conn.
func (t *ConnectionTable) CountConnection(conn *Connection) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.entries {
		if c == conn {
			n++
		}
	}
	return n
}

// Len returns the number of entries.
func (t *ConnectionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
