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
	"time"

	"github.com/rulego/sysdesign/api/types"
)

// Connection 连接
// An edge joining two ports of two different operators. It owns neither port.
// Its lifetime context is cancelled when it is removed, which stops every
// stream bound to it.
type Connection struct {
	id     string
	a, b   *Port
	ctx    context.Context
	cancel context.CancelFunc
}

func newConnection(a, b *Port) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		id:     NewRequestId(),
		a:      a,
		b:      b,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Id returns the connection id.
func (c *Connection) Id() string {
	return c.id
}

// Ports returns both ends.
func (c *Connection) Ports() (*Port, *Port) {
	return c.a, c.b
}

// GetOtherPort returns the far side given one's own port, nil if p is not an end.
func (c *Connection) GetOtherPort(p *Port) *Port {
	switch p {
	case c.a:
		return c.b
	case c.b:
		return c.a
	default:
		return nil
	}
}

// Joins reports whether the connection joins the two ports, in any order.
func (c *Connection) Joins(p, q *Port) bool {
	return (c.a == p && c.b == q) || (c.a == q && c.b == p)
}

// Done is closed when the connection is removed.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Closed reports whether the connection was removed.
func (c *Connection) Closed() bool {
	return c.ctx.Err() != nil
}

func (c *Connection) close() {
	c.cancel()
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.a, c.b)
}

// Deliver carries data from one end to the other and hands it to the receiving
// operator. It returns once the receiver has handled the message; the error is
// the transport failure, or the receiver's rejection of the message.
func (c *Connection) Deliver(ctx context.Context, data *RequestData, from *Port) error {
	to := c.GetOtherPort(from)
	if to == nil {
		return types.ErrConnectionClosed
	}
	if c.Closed() {
		return types.ErrConnectionClosed
	}
	config := from.Parent().Config()
	if data.Hops > config.GetMaxHops() {
		return fmt.Errorf("%w: %d", types.ErrHopLimitExceeded, data.Hops)
	}
	if latency := config.HopLatency; latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.Done():
			timer.Stop()
			return types.ErrConnectionClosed
		}
	}
	if c.Closed() {
		return types.ErrConnectionClosed
	}
	return to.Parent().ReceiveData(ctx, data, to.IsOutput())
}
