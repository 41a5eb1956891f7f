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

// Endpoint 端点
// A named route exposed by an operator. Two endpoints are the same route when
// their urls match and they support the same set of methods.
type Endpoint struct {
	Url              string           `json:"url" mapstructure:"url"`
	SupportedMethods []HTTPMethod     `json:"supportedMethods" mapstructure:"supportedMethods"`
	Protocol         Protocol         `json:"protocol" mapstructure:"protocol"`
	GrpcMode         GRPCMode         `json:"grpcMode" mapstructure:"grpcMode"`
	Actions          []EndpointAction `json:"actions,omitempty" mapstructure:"actions"`
}

// NewEndpoint creates an HTTP endpoint. With no methods given it supports all of them.
func NewEndpoint(url string, methods ...HTTPMethod) Endpoint {
	if len(methods) == 0 {
		methods = AllMethods
	}
	return Endpoint{
		Url:              url,
		SupportedMethods: append([]HTTPMethod(nil), methods...),
		Protocol:         HTTP,
	}
}

// Equal reports route identity: same url and same method set, order ignored.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.Url == other.Url && MethodSetEqual(e.SupportedMethods, other.SupportedMethods)
}

// Supports reports whether the endpoint accepts the method.
func (e Endpoint) Supports(method HTTPMethod) bool {
	for _, m := range e.SupportedMethods {
		if m == method {
			return true
		}
	}
	return false
}

// StreamCapable reports whether a stream may be open on this endpoint:
// any WebSockets endpoint or a gRPC endpoint with a streaming mode.
func (e Endpoint) StreamCapable() bool {
	return e.Protocol == WebSockets || (e.Protocol == GRPC && e.GrpcMode != Unary)
}

// EndsStream reports whether a message arriving on an open exchange closes it:
// any WebSockets message, or a non-stream message on a non-Unary endpoint.
func (e Endpoint) EndsStream(stream bool) bool {
	return e.Protocol == WebSockets || (!stream && e.GrpcMode != Unary)
}

// ServerStreams reports whether the server side may push frames on its own.
func (e Endpoint) ServerStreams() bool {
	if e.Protocol == WebSockets {
		return true
	}
	return e.Protocol == GRPC && (e.GrpcMode == ServerStreaming || e.GrpcMode == BidirectionalStreaming)
}

// Copy returns a deep copy.
func (e Endpoint) Copy() Endpoint {
	c := e
	c.SupportedMethods = append([]HTTPMethod(nil), e.SupportedMethods...)
	if e.Actions != nil {
		c.Actions = append([]EndpointAction(nil), e.Actions...)
	}
	return c
}

// MethodSetEqual compares two method lists as sets.
func MethodSetEqual(a, b []HTTPMethod) bool {
	var sa, sb uint
	for _, m := range a {
		sa |= 1 << uint(m)
	}
	for _, m := range b {
		sb |= 1 << uint(m)
	}
	return sa == sb
}

// FindEndpoint returns the first endpoint with the url.
func FindEndpoint(endpoints []Endpoint, url string) (Endpoint, bool) {
	for _, ep := range endpoints {
		if ep.Url == url {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// ContainsEndpoint reports whether an equal endpoint is in the list.
func ContainsEndpoint(endpoints []Endpoint, target Endpoint) bool {
	for _, ep := range endpoints {
		if ep.Equal(target) {
			return true
		}
	}
	return false
}

// EndpointAction 端点动作
// Binds a matched endpoint to an endpoint on a downstream operator.
type EndpointAction struct {
	// Endpoint is the downstream endpoint the action calls.
	Endpoint Endpoint `json:"endpoint" mapstructure:"endpoint"`
	// Method is the downstream method, Inherit reuses the incoming one.
	Method ActionMethod `json:"method" mapstructure:"method"`
	// Asynchronous actions are fired without waiting and never get a reply path.
	Asynchronous bool `json:"asynchronous" mapstructure:"asynchronous"`
	// Condition is an optional boolean expression; the action is skipped when it is false.
	// Variables: method, url, stream, originId, body.
	Condition string `json:"condition,omitempty" mapstructure:"condition"`
}

// EndpointRef 请求引用的端点及方法
type EndpointRef struct {
	Endpoint Endpoint   `json:"endpoint"`
	Method   HTTPMethod `json:"method"`
}
