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

package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/json"
)

// Sender is implemented by operators that originate requests.
type Sender interface {
	Send(ctx context.Context, url string, method types.HTTPMethod, stream bool) (string, error)
	CloseStream(ctx context.Context, requestId string) error
}

// StreamStarter is implemented by operators driving server streams.
type StreamStarter interface {
	StartStream(requestId string) error
}

// OperatorView 节点视图
type OperatorView struct {
	Id        string           `json:"id"`
	Type      string           `json:"type"`
	Endpoints []types.Endpoint `json:"endpoints"`
	// Inputs ids of the operators connected to the input port
	Inputs []string `json:"inputs"`
	// Outputs ids of the operators connected to the output port
	Outputs []string `json:"outputs"`
}

// AddOperatorRequest 新增节点请求
type AddOperatorRequest struct {
	Id            string              `json:"id"`
	Type          string              `json:"type"`
	Configuration types.Configuration `json:"configuration"`
}

// ConnectionRequest 连接请求
type ConnectionRequest struct {
	FromId string `json:"fromId"`
	ToId   string `json:"toId"`
}

// SendRequest 发送请求
type SendRequest struct {
	Url    string           `json:"url"`
	Method types.HTTPMethod `json:"method"`
	Stream bool             `json:"stream"`
}

func viewOf(op engine.Operator) OperatorView {
	view := OperatorView{
		Id:        op.Id(),
		Type:      op.Type(),
		Endpoints: engine.ResolveEndpoints(op),
		Inputs:    []string{},
		Outputs:   []string{},
	}
	if view.Endpoints == nil {
		view.Endpoints = []types.Endpoint{}
	}
	if port := op.GetPort(false); port != nil {
		for _, far := range port.FarOperators() {
			view.Inputs = append(view.Inputs, far.Id())
		}
	}
	if port := op.GetPort(true); port != nil {
		for _, far := range port.FarOperators() {
			view.Outputs = append(view.Outputs, far.Id())
		}
	}
	return view
}

func (r *Rest) components(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	r.writeJSON(w, http.StatusOK, r.Topology.Registry().Types())
}

func (r *Rest) listOperators(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	views := make([]OperatorView, 0)
	for _, op := range r.Topology.Operators() {
		views = append(views, viewOf(op))
	}
	r.writeJSON(w, http.StatusOK, views)
}

func (r *Rest) addOperator(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body AddOperatorRequest
	if err := json.Decode(req.Body, &body); err != nil {
		r.writeError(w, http.StatusBadRequest, err)
		return
	}
	op, err := r.Topology.AddOperator(body.Id, body.Type, body.Configuration)
	if err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	r.writeJSON(w, http.StatusCreated, viewOf(op))
}

func (r *Rest) getOperator(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	op, ok := r.operator(w, params)
	if !ok {
		return
	}
	r.writeJSON(w, http.StatusOK, viewOf(op))
}

func (r *Rest) removeOperator(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	if err := r.Topology.RemoveOperator(params.ByName("id")); err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Rest) send(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	op, ok := r.operator(w, params)
	if !ok {
		return
	}
	sender, ok := op.(Sender)
	if !ok {
		r.writeError(w, http.StatusBadRequest, errors.New("operator "+op.Id()+" does not send requests"))
		return
	}
	var body SendRequest
	if err := json.Decode(req.Body, &body); err != nil {
		r.writeError(w, http.StatusBadRequest, err)
		return
	}
	requestId, err := sender.Send(req.Context(), body.Url, body.Method, body.Stream)
	if err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	r.writeJSON(w, http.StatusAccepted, map[string]string{"requestId": requestId})
}

func (r *Rest) startStream(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	op, ok := r.operator(w, params)
	if !ok {
		return
	}
	starter, ok := op.(StreamStarter)
	if !ok {
		r.writeError(w, http.StatusBadRequest, errors.New("operator "+op.Id()+" does not drive streams"))
		return
	}
	if err := starter.StartStream(params.ByName("requestId")); err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Rest) closeStream(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	op, ok := r.operator(w, params)
	if !ok {
		return
	}
	sender, ok := op.(Sender)
	if !ok {
		r.writeError(w, http.StatusBadRequest, errors.New("operator "+op.Id()+" does not send requests"))
		return
	}
	if err := sender.CloseStream(req.Context(), params.ByName("requestId")); err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Rest) connect(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body ConnectionRequest
	if err := json.Decode(req.Body, &body); err != nil {
		r.writeError(w, http.StatusBadRequest, err)
		return
	}
	conn, err := r.Topology.Connect(body.FromId, body.ToId)
	if err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	r.writeJSON(w, http.StatusCreated, map[string]string{"id": conn.Id(), "fromId": body.FromId, "toId": body.ToId})
}

func (r *Rest) disconnect(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var body ConnectionRequest
	if err := json.Decode(req.Body, &body); err != nil {
		r.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := r.Topology.Disconnect(body.FromId, body.ToId); err != nil {
		r.writeError(w, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Rest) operator(w http.ResponseWriter, params httprouter.Params) (engine.Operator, bool) {
	id := params.ByName("id")
	op, ok := r.Topology.Get(id)
	if !ok {
		r.writeError(w, http.StatusNotFound, errors.New("operator not found: id="+id))
	}
	return op, ok
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrOperatorNotFound), errors.Is(err, types.ErrComponentNotFound), errors.Is(err, types.ErrStreamNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrOperatorExists):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (r *Rest) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		r.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set(ContentTypeKey, JsonContextType)
	if r.Config.AllowCors {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (r *Rest) writeError(w http.ResponseWriter, status int, err error) {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	w.Header().Set(ContentTypeKey, JsonContextType)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
