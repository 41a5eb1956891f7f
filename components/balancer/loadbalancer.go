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
	"context"
	"fmt"
	"sync"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/maps"
)

// Registry 负载均衡组件列表
var Registry = &engine.SafeOperatorSlice{}

func init() {
	Registry.Add(&LoadBalancer{})
}

// LoadBalancerConfiguration 节点配置
type LoadBalancerConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Type Layer4 or Layer7, default Layer7
	Type types.LoadBalancerType `json:"type"`
	// Algorithm default RoundRobin
	Algorithm types.BalancingAlgorithm `json:"algorithm"`
}

// LoadBalancer 负载均衡节点
type LoadBalancer struct {
	// counter is accessed atomically, kept first for 64-bit alignment
	counter uint64

	engine.BaseOperator

	lock   sync.RWMutex
	config LoadBalancerConfiguration
	pick   Picker

	// inFlight maps forwarded request ids to the downstream connection carrying them.
	inFlight *engine.ConnectionTable
}

func (lb *LoadBalancer) New() engine.Operator {
	return &LoadBalancer{}
}

// Type 组件类型
func (lb *LoadBalancer) Type() string {
	return "loadBalancer"
}

// Init 初始化
func (lb *LoadBalancer) Init(config types.Config, configuration types.Configuration) error {
	c := LoadBalancerConfiguration{Title: "Load Balancer", Type: types.Layer7, Algorithm: types.RoundRobin}
	if err := maps.Map2Struct(configuration, &c); err != nil {
		return err
	}
	lb.inFlight = engine.NewConnectionTable()
	lb.InputPort = engine.NewPort(lb, false, true)
	lb.OutputPort = engine.NewPort(lb, true, true)
	lb.Setup(lb, config)
	lb.config.Title = c.Title
	lb.SetType(c.Type)
	if err := lb.SetAlgorithm(c.Algorithm); err != nil {
		lb.config.Algorithm = types.RoundRobin
		lb.pick = lb.picker(types.RoundRobin)
	}
	return nil
}

// Options returns the current configuration.
func (lb *LoadBalancer) Options() LoadBalancerConfiguration {
	lb.lock.RLock()
	defer lb.lock.RUnlock()
	return lb.config
}

// SetType changes the balancer type. Moving to Layer4 while URLHash is
// selected demotes the algorithm to RoundRobin.
func (lb *LoadBalancer) SetType(t types.LoadBalancerType) {
	lb.lock.Lock()
	defer lb.lock.Unlock()
	lb.config.Type = t
	if t == types.Layer4 && lb.config.Algorithm.ContentBased() {
		lb.config.Algorithm = types.RoundRobin
		lb.pick = lb.picker(types.RoundRobin)
	}
	if lb.pick == nil {
		lb.pick = lb.picker(lb.config.Algorithm)
	}
}

// SetAlgorithm changes the balancing algorithm. Content based algorithms
// are refused on Layer4 balancers.
func (lb *LoadBalancer) SetAlgorithm(algorithm types.BalancingAlgorithm) error {
	lb.lock.Lock()
	defer lb.lock.Unlock()
	if lb.config.Type == types.Layer4 && algorithm.ContentBased() {
		return fmt.Errorf("%w: %s on %s", types.ErrIncompatibleAlgorithm, algorithm, lb.config.Type)
	}
	lb.config.Algorithm = algorithm
	lb.pick = lb.picker(algorithm)
	return nil
}

// DownstreamPort the balancer advertises what its targets advertise.
func (lb *LoadBalancer) DownstreamPort() *engine.Port {
	return lb.OutputPort
}

func (lb *LoadBalancer) GetAvailableEndpoints() []types.Endpoint {
	return engine.ResolveEndpoints(lb)
}

// ReceiveData 处理收到的数据
func (lb *LoadBalancer) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if fromOutput {
		lb.relay(ctx, data)
		return nil
	}

	// frames of an open stream keep their route
	target, sticky := lb.inFlight.Get(data.RequestId)
	if !sticky || !lb.OutputPort.Has(target) {
		candidates := lb.candidates(data.Url())
		if len(candidates) == 0 {
			lb.Config().Debugf("loadBalancer %s: no target for %s, dropped", lb.Id(), data.Url())
			return nil
		}
		lb.lock.RLock()
		pick := lb.pick
		lb.lock.RUnlock()
		target = candidates[pick(candidates, data)]
	}
	lb.FireReceiveData(data)

	lb.Table.Set(data.RequestId, data.Origin)
	lb.inFlight.Set(data.RequestId, target)
	err := lb.Send(ctx, target, data.Forward(target))
	if err != nil || (sticky && !data.Header.Stream) {
		// failed, or the client closed its stream
		lb.settle(data.RequestId)
	}
	return nil
}

// relay hands a downstream answer back to the connection owed it.
func (lb *LoadBalancer) relay(ctx context.Context, data *engine.RequestData) {
	upstream, ok := lb.Table.Get(data.ResponseId)
	if !ok {
		lb.Config().Debugf("loadBalancer %s: stale response %s, dropped", lb.Id(), data.ResponseId)
		return
	}
	lb.FireReceiveData(data)
	err := lb.SendData(ctx, data.Forward(upstream))
	if err != nil || !data.Header.Stream {
		lb.settle(data.ResponseId)
	}
}

func (lb *LoadBalancer) settle(token string) {
	lb.Table.Delete(token)
	lb.inFlight.Delete(token)
}

// candidates returns the output connections whose operator serves url.
func (lb *LoadBalancer) candidates(url string) []*engine.Connection {
	var list []*engine.Connection
	for _, conn := range lb.OutputPort.Connections() {
		if far := conn.GetOtherPort(lb.OutputPort); far != nil && engine.Advertises(far.Parent(), url, false) {
			list = append(list, conn)
		}
	}
	return list
}

// InFlight returns the number of requests forwarded over conn and not yet answered.
// A request stays in flight until it is answered or conn is removed. A gateway
// never consumes behind a balancer: turning consumer drops its balancer input,
// which releases what was routed to it.
func (lb *LoadBalancer) InFlight(conn *engine.Connection) int {
	return lb.inFlight.CountConnection(conn)
}

// ReleaseConnection forgets the requests routed over, or owed to, conn.
func (lb *LoadBalancer) ReleaseConnection(conn *engine.Connection) {
	for _, token := range lb.Table.PurgeConnection(conn) {
		lb.inFlight.Delete(token)
	}
	for _, token := range lb.inFlight.PurgeConnection(conn) {
		lb.Table.Delete(token)
	}
}
