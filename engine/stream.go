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
	"time"
)

type streamHandle struct {
	cancel context.CancelFunc
}

// Stream starts a recurring task keyed by key, normally the stream's correlation token.
// Every stream interval it checks keep, calls tick, and checks keep again.
// The task ends when keep reports false, when tick fails, when conn is removed,
// when StopStream is called or when the operator is destroyed; none of these is an error.
// It returns false if a stream with the key is already running.
func (b *BaseOperator) Stream(key string, conn *Connection, keep func() bool, tick func(ctx context.Context) error) bool {
	b.streamsLock.Lock()
	if b.streams == nil {
		b.streams = make(map[string]*streamHandle)
	}
	if _, ok := b.streams[key]; ok {
		b.streamsLock.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(b.Context())
	h := &streamHandle{cancel: cancel}
	b.streams[key] = h
	b.streamsLock.Unlock()

	var connDone <-chan struct{}
	if conn != nil {
		connDone = conn.Done()
	}
	interval := b.config.GetStreamInterval()
	go func() {
		defer b.endStream(key, h)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-connDone:
				return
			case <-ticker.C:
			}
			if !keep() {
				return
			}
			if err := tick(ctx); err != nil {
				return
			}
			if !keep() {
				return
			}
		}
	}()
	return true
}

// StopStream cancels the stream with the key. It reports whether one was running.
func (b *BaseOperator) StopStream(key string) bool {
	b.streamsLock.Lock()
	h, ok := b.streams[key]
	if ok {
		delete(b.streams, key)
	}
	b.streamsLock.Unlock()
	if ok {
		h.cancel()
	}
	return ok
}

// IsStreaming reports whether a stream with the key is running.
func (b *BaseOperator) IsStreaming(key string) bool {
	b.streamsLock.Lock()
	defer b.streamsLock.Unlock()
	_, ok := b.streams[key]
	return ok
}

// StreamCount returns the number of running streams.
func (b *BaseOperator) StreamCount() int {
	b.streamsLock.Lock()
	defer b.streamsLock.Unlock()
	return len(b.streams)
}

func (b *BaseOperator) endStream(key string, h *streamHandle) {
	h.cancel()
	b.streamsLock.Lock()
	if cur, ok := b.streams[key]; ok && cur == h {
		delete(b.streams, key)
	}
	b.streamsLock.Unlock()
}
