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

package types

import (
	"math"
	"time"

	"github.com/rulego/sysdesign/utils/pool"
)

const (
	// DefaultStreamInterval delay between two frames of a server stream.
	DefaultStreamInterval = 700 * time.Millisecond
	// DefaultMaxHops bounds the connections one exchange may cross.
	DefaultMaxHops = 64
)

// OnEvent is a global listener invoked for every operator event after the
// operator's own listeners.
var OnEvent func(event Event)

// Config defines the configuration shared by all operators of a topology.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// Pool runs asynchronous dispatches and delivery tasks. If not configured, go func is used.
	// The default implementation is `pool.WorkerPool`.
	Pool Pool
	// StreamInterval is the delay between two stream frames, defaulting to 700 milliseconds.
	StreamInterval time.Duration
	// HopLatency simulates the transfer time of one hop over a connection. Zero delivers at once.
	HopLatency time.Duration
	// OnEvent receives every event emitted by operators of this config.
	OnEvent func(event Event)
	// MaxHops bounds the connections one exchange may cross, defaulting to 64.
	MaxHops int
	// Debug logs dropped messages (no route, stale responses).
	Debug bool
	// Properties are global key-value settings readable by components.
	Properties map[string]string
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:         DefaultLogger(),
		StreamInterval: DefaultStreamInterval,
		MaxHops:        DefaultMaxHops,
		Properties:     make(map[string]string),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}

// Submit runs task on the pool, or on a new goroutine when no pool is set or the pool is full.
func (c Config) Submit(task func()) {
	if c.Pool != nil {
		if err := c.Pool.Submit(task); err == nil {
			return
		}
	}
	go task()
}

// Logf logs through the configured logger.
func (c Config) Logf(format string, v ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

// Debugf logs only in debug mode.
func (c Config) Debugf(format string, v ...interface{}) {
	if c.Debug {
		c.Logf(format, v...)
	}
}

// GetStreamInterval returns the stream interval, or the default when unset.
func (c Config) GetStreamInterval() time.Duration {
	if c.StreamInterval <= 0 {
		return DefaultStreamInterval
	}
	return c.StreamInterval
}

// GetMaxHops returns the hop limit, or the default when unset.
func (c Config) GetMaxHops() int {
	if c.MaxHops <= 0 {
		return DefaultMaxHops
	}
	return c.MaxHops
}

// Pool 协程池
type Pool interface {
	// Submit 往协程池提交一个任务，如果协程池满返回错误
	Submit(task func()) error
	// Release 释放
	Release()
}

// DefaultPool provides a default coroutine pool.
func DefaultPool() Pool {
	wp := &pool.WorkerPool{MaxWorkersCount: math.MaxInt32}
	wp.Start()
	return wp
}
