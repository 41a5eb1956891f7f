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

package balancer

import (
	"math/rand"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
)

// Picker chooses the index of one of n candidates for data.
type Picker func(candidates []*engine.Connection, data *engine.RequestData) int

// roundRobin cycles through the candidates in connection order.
func roundRobin(counter *uint64) Picker {
	return func(candidates []*engine.Connection, data *engine.RequestData) int {
		next := atomic.AddUint64(counter, 1) - 1
		return int(next % uint64(len(candidates)))
	}
}

// leastConnections picks the candidate with the fewest requests in flight,
// the first one on ties.
func leastConnections(inFlight *engine.ConnectionTable) Picker {
	return func(candidates []*engine.Connection, data *engine.RequestData) int {
		best, bestCount := 0, -1
		for i, c := range candidates {
			n := inFlight.CountConnection(c)
			if bestCount < 0 || n < bestCount {
				best, bestCount = i, n
			}
		}
		return best
	}
}

// hashOf maps the same key to the same candidate while the candidates stay the same.
func hashOf(key func(data *engine.RequestData) string) Picker {
	return func(candidates []*engine.Connection, data *engine.RequestData) int {
		return int(xxhash.Sum64String(key(data)) % uint64(len(candidates)))
	}
}

func random(candidates []*engine.Connection, data *engine.RequestData) int {
	return rand.Intn(len(candidates))
}

// picker returns the picker of the algorithm.
func (lb *LoadBalancer) picker(algorithm types.BalancingAlgorithm) Picker {
	switch algorithm {
	case types.LeastConnections:
		return leastConnections(lb.inFlight)
	case types.IPHash:
		return hashOf(func(data *engine.RequestData) string { return data.OriginId })
	case types.URLHash:
		return hashOf(func(data *engine.RequestData) string { return data.Url() })
	case types.Random:
		return random
	default:
		return roundRobin(&lb.counter)
	}
}
