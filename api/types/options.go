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

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithPool is an option that sets the pool of the Config.
func WithPool(pool Pool) Option {
	return func(c *Config) error {
		c.Pool = pool
		return nil
	}
}

// WithDefaultPool sets an unbounded worker pool.
func WithDefaultPool() Option {
	return func(c *Config) error {
		wp := &pool.WorkerPool{MaxWorkersCount: math.MaxInt32}
		wp.Start()
		c.Pool = wp
		return nil
	}
}

// WithStreamInterval sets the delay between stream frames.
func WithStreamInterval(interval time.Duration) Option {
	return func(c *Config) error {
		c.StreamInterval = interval
		return nil
	}
}

// WithHopLatency sets the simulated transfer time of one hop.
func WithHopLatency(latency time.Duration) Option {
	return func(c *Config) error {
		c.HopLatency = latency
		return nil
	}
}

// WithOnEvent sets the event callback of the Config.
func WithOnEvent(onEvent func(event Event)) Option {
	return func(c *Config) error {
		c.OnEvent = onEvent
		return nil
	}
}

// WithDebug enables logging of dropped messages.
func WithDebug(debug bool) Option {
	return func(c *Config) error {
		c.Debug = debug
		return nil
	}
}

// WithProperties sets global properties.
func WithProperties(properties map[string]string) Option {
	return func(c *Config) error {
		c.Properties = properties
		return nil
	}
}

// WithMaxHops sets the hop limit of one exchange.
func WithMaxHops(maxHops int) Option {
	return func(c *Config) error {
		c.MaxHops = maxHops
		return nil
	}
}
