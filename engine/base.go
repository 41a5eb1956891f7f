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
	"context"
	"sync"

	"github.com/rulego/sysdesign/api/types"
)

// BaseOperator holds what every operator variant shares: ports, the
// connection table, event listeners, streams and the operator lifetime.
// Variants embed it and call Setup from Init.
type BaseOperator struct {
	id     string
	self   Operator
	config types.Config

	InputPort  *Port
	OutputPort *Port
	// Table maps correlation tokens to the connection owed the answer.
	Table *ConnectionTable

	listenersLock sync.RWMutex
	listeners     []types.EventListener

	streamsLock sync.Mutex
	streams     map[string]*streamHandle

	ctx    context.Context
	cancel context.CancelFunc
}

// Setup binds the base to the variant embedding it. self is used for the
// polymorphic calls (CanConnectTo, Type) made from shared code.
func (b *BaseOperator) Setup(self Operator, config types.Config) {
	b.self = self
	b.config = config
	if b.config.Logger == nil {
		b.config.Logger = types.DefaultLogger()
	}
	if b.Table == nil {
		b.Table = NewConnectionTable()
	}
	if b.id == "" {
		b.id = NewRequestId()
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
}

func (b *BaseOperator) Id() string {
	return b.id
}

func (b *BaseOperator) SetId(id string) {
	b.id = id
}

func (b *BaseOperator) Config() types.Config {
	return b.config
}

// Context is cancelled when the operator is destroyed.
func (b *BaseOperator) Context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

// Destroyed reports whether Destroy was called.
func (b *BaseOperator) Destroyed() bool {
	return b.ctx != nil && b.ctx.Err() != nil
}

func (b *BaseOperator) GetPort(output bool) *Port {
	if output {
		return b.OutputPort
	}
	return b.InputPort
}

// CanConnectTo accepts any port of another operator with the opposite direction,
// provided the operator has the port.
func (b *BaseOperator) CanConnectTo(port *Port, connectingWithOutput bool) bool {
	if port == nil || b.GetPort(connectingWithOutput) == nil || b.Destroyed() {
		return false
	}
	return port.IsOutput() != connectingWithOutput && port.Parent() != b.self
}

func (b *BaseOperator) ConnectTo(other Operator, connectingWithOutput, connectingToOutput bool) *Connection {
	own := b.GetPort(connectingWithOutput)
	otherPort := other.GetPort(connectingToOutput)
	if own == nil || otherPort == nil {
		return nil
	}
	if !b.self.CanConnectTo(otherPort, connectingWithOutput) {
		return nil
	}
	if !other.CanConnectTo(own, connectingToOutput) {
		return nil
	}
	return own.ConnectTo(otherPort)
}

func (b *BaseOperator) OnConnectionUpdate(wasOutput bool) {
}

func (b *BaseOperator) GetAvailableEndpoints() []types.Endpoint {
	return nil
}

// SendData sends a response or stream frame back to whoever is owed it: the
// connection recorded for its ResponseId, else its Origin. A terminal message
// clears the entry; a failed stream frame clears it too, ending the stream.
func (b *BaseOperator) SendData(ctx context.Context, data *RequestData) error {
	target, ok := b.Table.Get(data.ResponseId)
	if !ok || target == nil {
		target = data.Origin
	}
	if target == nil {
		return types.ErrNoTargetConnection
	}
	if !data.Header.Stream {
		b.Table.Delete(data.ResponseId)
	}
	err := b.Send(ctx, target, data)
	if err != nil && data.Header.Stream {
		b.Table.Delete(data.ResponseId)
	}
	return err
}

// Send delivers data over conn through whichever port of the operator holds it.
// A failure is reported with a send-failed event and returned.
func (b *BaseOperator) Send(ctx context.Context, conn *Connection, data *RequestData) error {
	var err error
	if port := b.PortOf(conn); port == nil {
		err = types.ErrConnectionClosed
	} else {
		err = port.SendData(ctx, data, conn)
	}
	if err != nil {
		b.config.Debugf("%s %s send %s failed: %v", b.typeName(), b.id, data.RequestId, err)
		b.FireSendFailed(data, err)
	}
	return err
}

// PortOf returns the port of this operator holding conn.
func (b *BaseOperator) PortOf(conn *Connection) *Port {
	if conn == nil {
		return nil
	}
	for _, p := range []*Port{b.InputPort, b.OutputPort} {
		if p != nil && p.Has(conn) {
			return p
		}
	}
	return nil
}

// ReleaseConnection purges the connection table entries owed to a removed connection.
func (b *BaseOperator) ReleaseConnection(conn *Connection) {
	if b.Table != nil {
		b.Table.PurgeConnection(conn)
	}
}

func (b *BaseOperator) OnEvent(listener types.EventListener) {
	if listener == nil {
		return
	}
	b.listenersLock.Lock()
	defer b.listenersLock.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Fire delivers an event to the operator listeners, the config listener and the global one.
func (b *BaseOperator) Fire(event types.Event) {
	b.listenersLock.RLock()
	listeners := append([]types.EventListener(nil), b.listeners...)
	b.listenersLock.RUnlock()
	for _, l := range listeners {
		l(event)
	}
	if b.config.OnEvent != nil {
		b.config.OnEvent(event)
	}
	if types.OnEvent != nil {
		types.OnEvent(event)
	}
}

func (b *BaseOperator) newEvent(eventType types.EventType, data *RequestData) types.Event {
	event := types.NewEvent(eventType, b.id, b.typeName())
	if data != nil {
		event.RequestId = data.RequestId
		event.ResponseId = data.ResponseId
		event.Url = data.Url()
		event.Stream = data.Header.Stream
	}
	return event
}

// FireReceiveData emits a data-received event.
func (b *BaseOperator) FireReceiveData(data *RequestData) {
	b.Fire(b.newEvent(types.EventDataReceived, data))
}

// FireSendFailed emits a send-failed event carrying the reason.
func (b *BaseOperator) FireSendFailed(data *RequestData, reason error) {
	event := b.newEvent(types.EventSendFailed, data)
	if reason != nil {
		event.Reason = reason.Error()
	}
	b.Fire(event)
}

// FireStatusCode emits a status-code event.
func (b *BaseOperator) FireStatusCode(data *RequestData, code int) {
	event := b.newEvent(types.EventStatusCode, data)
	event.Code = code
	b.Fire(event)
}

// Destroy stops all streams and removes every connection of the operator.
func (b *BaseOperator) Destroy() {
	if b.cancel != nil {
		b.cancel()
	}
	if b.InputPort != nil {
		b.InputPort.RemoveAll()
	}
	if b.OutputPort != nil {
		b.OutputPort.RemoveAll()
	}
}

func (b *BaseOperator) typeName() string {
	if b.self == nil {
		return ""
	}
	return b.self.Type()
}
