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
	"fmt"
	"sync"

	"github.com/rulego/sysdesign/api/types"
)

// structureMu serializes structural changes of the graph so the
// multiplicity checks and the symmetric updates of both ports are atomic.
var structureMu sync.Mutex

// ConnectionReleaser is implemented by operators that hold state keyed to a
// connection and must drop it when the connection is removed.
type ConnectionReleaser interface {
	ReleaseConnection(conn *Connection)
}

// Port 端口
// A connection point owned by exactly one operator.
type Port struct {
	parent Operator
	output bool
	multi  bool

	mu          sync.RWMutex
	connections []*Connection
}

// NewPort creates a port. multi allows more than one connection.
func NewPort(parent Operator, output, multi bool) *Port {
	return &Port{parent: parent, output: output, multi: multi}
}

// Parent returns the owning operator.
func (p *Port) Parent() Operator {
	return p.parent
}

// IsOutput reports the port direction.
func (p *Port) IsOutput() bool {
	return p.output
}

// IsMulti reports the port multiplicity.
func (p *Port) IsMulti() bool {
	return p.multi
}

func (p *Port) String() string {
	dir := "in"
	if p.output {
		dir = "out"
	}
	return fmt.Sprintf("%s:%s", p.parent.Id(), dir)
}

// Connections returns a snapshot, in connection order.
func (p *Port) Connections() []*Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*Connection(nil), p.connections...)
}

// Len returns the number of connections.
func (p *Port) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.connections)
}

// Has reports whether conn is attached to the port.
func (p *Port) Has(conn *Connection) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.connections {
		if c == conn {
			return true
		}
	}
	return false
}

// ConnectionTo returns the connection joining p and other, if any.
func (p *Port) ConnectionTo(other *Port) *Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.connections {
		if c.Joins(p, other) {
			return c
		}
	}
	return nil
}

// FarOperators returns the operators on the other side of each connection.
func (p *Port) FarOperators() []Operator {
	conns := p.Connections()
	ops := make([]Operator, 0, len(conns))
	for _, c := range conns {
		if other := c.GetOtherPort(p); other != nil {
			ops = append(ops, other.Parent())
		}
	}
	return ops
}

// ConnectTo joins p and other. It returns nil when the ports cannot be joined:
// same operator, same direction, or already connected to each other.
// A single port drops its current connection first.
// Both operators' OnConnectionUpdate hooks fire after the connection exists.
func (p *Port) ConnectTo(other *Port) *Connection {
	if other == nil || other.parent == p.parent || other.output == p.output {
		return nil
	}
	var evicted []*Connection
	structureMu.Lock()
	if p.ConnectionTo(other) != nil {
		structureMu.Unlock()
		return nil
	}
	for _, port := range []*Port{p, other} {
		if !port.multi {
			for _, c := range port.Connections() {
				port.detach(c)
				if far := c.GetOtherPort(port); far != nil {
					far.detach(c)
				}
				evicted = append(evicted, c)
			}
		}
	}
	conn := newConnection(p, other)
	p.attach(conn)
	other.attach(conn)
	structureMu.Unlock()

	for _, c := range evicted {
		released(c)
	}
	for _, c := range evicted {
		fireRemoved(c)
	}
	p.parent.OnConnectionUpdate(p.output)
	other.parent.OnConnectionUpdate(other.output)
	return conn
}

// RemoveConnection removes conn from both of its ports. It returns false,
// doing nothing, when conn is not attached to p.
func (p *Port) RemoveConnection(conn *Connection) bool {
	if conn == nil {
		return false
	}
	other := conn.GetOtherPort(p)
	if other == nil {
		return false
	}
	structureMu.Lock()
	removed := p.detach(conn)
	other.detach(conn)
	structureMu.Unlock()
	if !removed {
		return false
	}
	released(conn)
	fireRemoved(conn)
	return true
}

// RemoveAll removes every connection of the port.
func (p *Port) RemoveAll() {
	for _, c := range p.Connections() {
		p.RemoveConnection(c)
	}
}

// SendData delivers data over conn, which must be attached to p.
func (p *Port) SendData(ctx context.Context, data *RequestData, conn *Connection) error {
	if !p.Has(conn) {
		return types.ErrConnectionClosed
	}
	return conn.Deliver(ctx, data, p)
}

func (p *Port) attach(conn *Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connections = append(p.connections, conn)
}

func (p *Port) detach(conn *Connection) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.connections {
		if c == conn {
			p.connections = append(p.connections[:i], p.connections[i+1:]...)
			return true
		}
	}
	return false
}

// released closes the connection and lets both operators drop state keyed to it.
func released(conn *Connection) {
	conn.close()
	for _, port := range []*Port{conn.a, conn.b} {
		if r, ok := port.parent.(ConnectionReleaser); ok {
			r.ReleaseConnection(conn)
		}
	}
}

func fireRemoved(conn *Connection) {
	conn.a.parent.OnConnectionUpdate(conn.a.output)
	conn.b.parent.OnConnectionUpdate(conn.b.output)
}
