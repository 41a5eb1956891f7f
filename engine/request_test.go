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
	"testing"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/test/assert"
)

func TestRequestData(t *testing.T) {
	ref := types.EndpointRef{Endpoint: types.NewEndpoint("users"), Method: types.PUT}
	req := NewRequest(ref, nil, "session")
	assert.True(t, req.RequestId != "")
	assert.NotEqual(t, req.RequestId, NewRequest(ref, nil, "session").RequestId)
	assert.Nil(t, req.Validate())
	assert.Equal(t, "users", req.Url())
	assert.Equal(t, types.PUT, req.Method())

	t.Run("Invalid", func(t *testing.T) {
		var nilReq *RequestData
		assert.ErrorIs(t, nilReq.Validate(), types.ErrEmptyRequestId)
		assert.ErrorIs(t, (&RequestData{}).Validate(), types.ErrEmptyRequestId)
		empty := &RequestData{RequestId: "r"}
		assert.ErrorIs(t, empty.Validate(), types.ErrNilEndpoint)
		assert.Equal(t, "", empty.Url())
		assert.Equal(t, types.GET, empty.Method())
	})

	t.Run("Response", func(t *testing.T) {
		resp := req.Response(types.StatusOK, true)
		assert.Equal(t, req.RequestId, resp.ResponseId)
		assert.NotEqual(t, req.RequestId, resp.RequestId)
		assert.Equal(t, "session", resp.OriginId)
		assert.Equal(t, types.StatusOK, resp.Status)
		assert.True(t, resp.Header.Stream)
		assert.Equal(t, 1, resp.Hops)
	})

	t.Run("Derive", func(t *testing.T) {
		req.Body = "payload"
		derived := req.Derive(types.EndpointRef{Endpoint: types.NewEndpoint("orders"), Method: types.POST}, nil)
		assert.NotEqual(t, req.RequestId, derived.RequestId)
		assert.Equal(t, "orders", derived.Url())
		assert.Equal(t, types.POST, derived.Method())
		assert.Equal(t, "payload", derived.Body)
		assert.Equal(t, "session", derived.OriginId)
		assert.Equal(t, 1, derived.Hops)
	})

	t.Run("Forward", func(t *testing.T) {
		forwarded := req.Forward(nil)
		assert.Equal(t, req.RequestId, forwarded.RequestId)
		assert.Equal(t, req.Hops+1, forwarded.Hops)
		assert.Equal(t, 0, req.Hops)
	})
}
