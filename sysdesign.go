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

// Package sysdesign provides an in-process operator graph simulating the
// building blocks of a system design: API gateways, load balancers,
// publish/subscribe brokers, databases, caches and the clients calling them.
//
// # Usage
//
// Create a topology, add operators by component type with their configuration,
// then connect the output of one operator to the input of another:
//
//	topology := sysdesign.New(types.WithStreamInterval(time.Second))
//	defer topology.Close()
//
//	_, _ = topology.AddOperator("c1", "client", types.Configuration{
//		"url":    "api/posts",
//		"method": "GET",
//	})
//	_, _ = topology.AddOperator("gw", "api", types.Configuration{
//		"endpoints": []interface{}{
//			map[string]interface{}{
//				"url":              "api/posts",
//				"supportedMethods": []string{"GET", "POST"},
//				"actions": []interface{}{
//					map[string]interface{}{
//						"endpoint": map[string]interface{}{"url": "table"},
//						"method":   "Inherit",
//					},
//				},
//			},
//		},
//	})
//	_, _ = topology.AddOperator("db", "database", types.Configuration{"tables": []string{"table"}})
//	_, _ = topology.Connect("c1", "gw")
//	_, _ = topology.Connect("gw", "db")
//
// Components:
//
//   - api: the API gateway carrying the routing engine, see package gateway.
//   - loadBalancer: see package balancer.
//   - pubSub: see package messaging.
//   - database, cache: see package storage.
//   - client: see package client.
//
// Operators emit events (data received, send failed, status code) for display;
// listen to them with Topology.OnEvent.
package sysdesign

import (
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/components/balancer"
	"github.com/rulego/sysdesign/components/client"
	"github.com/rulego/sysdesign/components/gateway"
	"github.com/rulego/sysdesign/components/messaging"
	"github.com/rulego/sysdesign/components/storage"
	"github.com/rulego/sysdesign/engine"
)

// Registry 默认组件注册器
var Registry = engine.Registry

// 注册默认组件
func init() {
	var components []engine.Operator
	components = append(components, gateway.Registry.Components()...)
	components = append(components, balancer.Registry.Components()...)
	components = append(components, messaging.Registry.Components()...)
	components = append(components, storage.Registry.Components()...)
	components = append(components, client.Registry.Components()...)

	for _, operator := range components {
		_ = Registry.Register(operator)
	}
}

// NewConfig creates a config with the default worker pool.
func NewConfig(opts ...types.Option) types.Config {
	return types.NewConfig(append([]types.Option{types.WithDefaultPool()}, opts...)...)
}

// New creates an empty topology on the default registry.
func New(opts ...types.Option) *engine.Topology {
	return engine.NewTopology(NewConfig(opts...), Registry)
}
