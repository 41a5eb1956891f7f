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
	"github.com/gofrs/uuid/v5"
	"github.com/rulego/sysdesign/api/types"
)

// NewRequestId 通过uuid生成请求ID
func NewRequestId() string {
	uid, _ := uuid.NewV4()
	return uid.String()
}

// Header 请求头
type Header struct {
	// Endpoint is the matched endpoint and the method the request uses.
	Endpoint *types.EndpointRef `json:"endpoint"`
	Protocol types.Protocol     `json:"protocol"`
	// Stream marks a frame of an open stream rather than a terminal message.
	Stream bool `json:"stream"`
}

// RequestData is the unit of data flowing across connections.
// A RequestData is created per hop and not mutated once sent.
type RequestData struct {
	// RequestId 请求ID，不能为空
	RequestId string `json:"requestId"`
	// ResponseId is the RequestId of the request this message answers.
	ResponseId string `json:"responseId,omitempty"`
	Header     Header `json:"header"`
	// Origin is the connection the message travels on, and is answered through.
	Origin *Connection `json:"-"`
	// OriginId identifies the external origin, e.g. a client session.
	OriginId string `json:"originId,omitempty"`
	Body     string `json:"body,omitempty"`
	// Status is set on responses.
	Status int `json:"status,omitempty"`
	// Hops counts the connections the exchange crossed so far.
	Hops int `json:"hops"`
}

// NewRequest creates a request with a fresh id.
func NewRequest(ref types.EndpointRef, origin *Connection, originId string) *RequestData {
	return &RequestData{
		RequestId: NewRequestId(),
		Header: Header{
			Endpoint: &ref,
			Protocol: ref.Endpoint.Protocol,
		},
		Origin:   origin,
		OriginId: originId,
	}
}

// Validate rejects messages without request id or endpoint.
func (d *RequestData) Validate() error {
	if d == nil || d.RequestId == "" {
		return types.ErrEmptyRequestId
	}
	if d.Header.Endpoint == nil {
		return types.ErrNilEndpoint
	}
	return nil
}

// Url returns the url of the referenced endpoint.
func (d *RequestData) Url() string {
	if d.Header.Endpoint == nil {
		return ""
	}
	return d.Header.Endpoint.Endpoint.Url
}

// Method returns the method of the request.
func (d *RequestData) Method() types.HTTPMethod {
	if d.Header.Endpoint == nil {
		return types.GET
	}
	return d.Header.Endpoint.Method
}

// Response creates the answer to d: ResponseId is d.RequestId and it travels back over d.Origin.
func (d *RequestData) Response(status int, stream bool) *RequestData {
	resp := &RequestData{
		RequestId:  NewRequestId(),
		ResponseId: d.RequestId,
		Header: Header{
			Endpoint: d.Header.Endpoint,
			Protocol: d.Header.Protocol,
			Stream:   stream,
		},
		Origin:   d.Origin,
		OriginId: d.OriginId,
		Status:   status,
		Hops:     d.Hops + 1,
	}
	return resp
}

// Derive creates a new downstream request caused by d.
func (d *RequestData) Derive(ref types.EndpointRef, origin *Connection) *RequestData {
	req := NewRequest(ref, origin, d.OriginId)
	req.Body = d.Body
	req.Hops = d.Hops + 1
	return req
}

// Forward copies d unchanged except for the connection it travels on.
func (d *RequestData) Forward(origin *Connection) *RequestData {
	c := *d
	c.Origin = origin
	c.Hops = d.Hops + 1
	return &c
}
