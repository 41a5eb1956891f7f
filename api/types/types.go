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

// Package types defines the value types, enums, capabilities and configuration
// shared by the operator graph, the routing engine and its components.
package types

import (
	"fmt"
	"strings"
)

// Configuration 组件配置类型
// Operator configuration, decoded into a typed options struct during Init.
type Configuration map[string]interface{}

// Protocol 端点协议
type Protocol int

const (
	HTTP Protocol = iota
	HTTPS
	WebSockets
	GRPC
	TCP
	UDP
	MQTT
)

var protocolNames = map[Protocol]string{
	HTTP:       "HTTP",
	HTTPS:      "HTTPS",
	WebSockets: "WebSockets",
	GRPC:       "gRPC",
	TCP:        "TCP",
	UDP:        "UDP",
	MQTT:       "MQTT",
}

func (p Protocol) String() string {
	if v, ok := protocolNames[p]; ok {
		return v
	}
	return "Unknown"
}

// ParseProtocol parses a protocol name case-insensitively. Unknown names map to HTTP.
func ParseProtocol(s string) Protocol {
	for k, v := range protocolNames {
		if strings.EqualFold(v, s) {
			return k
		}
	}
	return HTTP
}

// HTTPMethod 请求方法
type HTTPMethod int

const (
	GET HTTPMethod = iota
	POST
	PUT
	PATCH
	DELETE
)

var methodNames = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// AllMethods every method an endpoint may support, in declaration order.
var AllMethods = []HTTPMethod{GET, POST, PUT, PATCH, DELETE}

func (m HTTPMethod) String() string {
	if int(m) >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "UNKNOWN"
}

// IsWrite reports whether the method mutates state on the target.
func (m HTTPMethod) IsWrite() bool {
	return m != GET
}

// ParseHTTPMethod parses a method name. The second value is false for unknown names.
func ParseHTTPMethod(s string) (HTTPMethod, bool) {
	for i, v := range methodNames {
		if strings.EqualFold(v, s) {
			return HTTPMethod(i), true
		}
	}
	return GET, false
}

// ActionMethod is the method an EndpointAction uses downstream.
// Inherit reuses the method of the incoming request.
type ActionMethod int

const (
	Inherit ActionMethod = iota
	ActionGET
	ActionPOST
	ActionPUT
	ActionPATCH
	ActionDELETE
)

// Resolve translates the action method into a concrete method.
func (a ActionMethod) Resolve(incoming HTTPMethod) HTTPMethod {
	if a == Inherit || a > ActionDELETE {
		return incoming
	}
	return HTTPMethod(a - 1)
}

func (a ActionMethod) String() string {
	if a == Inherit {
		return "Inherit"
	}
	return HTTPMethod(a - 1).String()
}

// ActionMethodOf converts a concrete method into its action form.
func ActionMethodOf(m HTTPMethod) ActionMethod {
	return ActionMethod(m + 1)
}

// GRPCMode gRPC 调用模式，只在gRPC协议下有意义
type GRPCMode int

const (
	Unary GRPCMode = iota
	ClientStreaming
	ServerStreaming
	BidirectionalStreaming
)

func (g GRPCMode) String() string {
	switch g {
	case ClientStreaming:
		return "Client Streaming"
	case ServerStreaming:
		return "Server Streaming"
	case BidirectionalStreaming:
		return "Bidirectional Streaming"
	default:
		return "Unary"
	}
}

// LoadBalancerType 负载均衡器类型
type LoadBalancerType int

const (
	Layer4 LoadBalancerType = iota
	Layer7
)

func (t LoadBalancerType) String() string {
	if t == Layer7 {
		return "Layer 7"
	}
	return "Layer 4"
}

// BalancingAlgorithm 负载均衡算法
type BalancingAlgorithm int

const (
	RoundRobin BalancingAlgorithm = iota
	LeastConnections
	IPHash
	URLHash
	Random
)

func (a BalancingAlgorithm) String() string {
	switch a {
	case LeastConnections:
		return "Least Connections"
	case IPHash:
		return "IP Hash"
	case URLHash:
		return "URL Hash"
	case Random:
		return "Random"
	default:
		return "Round Robin"
	}
}

// ContentBased reports whether the algorithm inspects request content,
// which only a layer 7 balancer can do.
func (a BalancingAlgorithm) ContentBased() bool {
	return a == URLHash
}

// DatabaseType 数据库类型
type DatabaseType int

const (
	Relational DatabaseType = iota
	Document
	KeyValue
	Graph
	TimeSeries
)

// WritePolicy 缓存写策略
type WritePolicy int

const (
	WriteThrough WritePolicy = iota
	WriteAround
	WriteBack
)

// Status codes reported through status-code events.
// Codes in [1000,2000) are cache codes.
const (
	StatusOK         = 200
	StatusAccepted   = 202
	StatusBadRequest = 400
	StatusNotFound   = 404
	StatusCacheHit   = 1200
	StatusCacheMiss  = 1404
)

// StatusText returns a short label for a status code.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusAccepted:
		return "Accepted"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusCacheHit:
		return "HIT"
	case StatusCacheMiss:
		return "MISS"
	default:
		return ""
	}
}

// parseEnum finds the value in [0,count) whose String form matches s, ignoring case and spaces.
func parseEnum[T ~int](s string, count int, name func(T) string) (T, error) {
	key := strings.ReplaceAll(s, " ", "")
	for i := 0; i < count; i++ {
		v := T(i)
		if strings.EqualFold(strings.ReplaceAll(name(v), " ", ""), key) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEnumValue, s)
}

func (p Protocol) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Protocol) UnmarshalText(b []byte) (err error) {
	*p, err = parseEnum(string(b), len(protocolNames), Protocol.String)
	return
}

func (m HTTPMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *HTTPMethod) UnmarshalText(b []byte) (err error) {
	*m, err = parseEnum(string(b), len(methodNames), HTTPMethod.String)
	return
}

func (a ActionMethod) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ActionMethod) UnmarshalText(b []byte) (err error) {
	*a, err = parseEnum(string(b), int(ActionDELETE)+1, ActionMethod.String)
	return
}

func (g GRPCMode) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GRPCMode) UnmarshalText(b []byte) (err error) {
	*g, err = parseEnum(string(b), int(BidirectionalStreaming)+1, GRPCMode.String)
	return
}

func (t LoadBalancerType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *LoadBalancerType) UnmarshalText(b []byte) (err error) {
	*t, err = parseEnum(string(b), int(Layer7)+1, LoadBalancerType.String)
	return
}

func (a BalancingAlgorithm) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *BalancingAlgorithm) UnmarshalText(b []byte) (err error) {
	*a, err = parseEnum(string(b), int(Random)+1, BalancingAlgorithm.String)
	return
}

func (d DatabaseType) String() string {
	switch d {
	case Document:
		return "Document"
	case KeyValue:
		return "Key Value"
	case Graph:
		return "Graph"
	case TimeSeries:
		return "Time Series"
	default:
		return "Relational"
	}
}

func (d DatabaseType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DatabaseType) UnmarshalText(b []byte) (err error) {
	*d, err = parseEnum(string(b), int(TimeSeries)+1, DatabaseType.String)
	return
}

func (w WritePolicy) String() string {
	switch w {
	case WriteAround:
		return "Write Around"
	case WriteBack:
		return "Write Back"
	default:
		return "Write Through"
	}
}

func (w WritePolicy) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *WritePolicy) UnmarshalText(b []byte) (err error) {
	*w, err = parseEnum(string(b), int(WriteBack)+1, WritePolicy.String)
	return
}
