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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/utils/json"
)

const (
	defaultEventBufferSize = 256
	writeWait              = 10 * time.Second
	pongWait               = 60 * time.Second
	pingPeriod             = pongWait * 9 / 10
)

// eventHub fans operator events out to websocket subscribers. A subscriber
// too slow to drain its buffer loses events rather than blocking operators.
type eventHub struct {
	size int

	lock        sync.RWMutex
	subscribers map[chan types.Event]string
	closed      bool
}

func newEventHub(size int) *eventHub {
	if size <= 0 {
		size = defaultEventBufferSize
	}
	return &eventHub{size: size, subscribers: make(map[chan types.Event]string)}
}

// subscribe returns a channel receiving the events of operatorId, or of all
// operators when operatorId is empty. It returns nil once the hub is closed.
func (h *eventHub) subscribe(operatorId string) chan types.Event {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return nil
	}
	ch := make(chan types.Event, h.size)
	h.subscribers[ch] = operatorId
	return ch
}

func (h *eventHub) unsubscribe(ch chan types.Event) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

func (h *eventHub) publish(event types.Event) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for ch, filter := range h.subscribers {
		if filter != "" && filter != event.OperatorId {
			continue
		}
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *eventHub) count() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.subscribers)
}

func (h *eventHub) close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// events upgrades to a websocket and writes every event as a json text
// message. Query parameter operatorId restricts the feed to one operator.
func (r *Rest) events(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	c, err := r.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.Logger.Printf("websocket upgrade error: %v", err)
		return
	}
	ch := r.hub.subscribe(req.URL.Query().Get("operatorId"))
	if ch == nil {
		_ = c.Close()
		return
	}
	done := make(chan struct{})
	// the read loop only serves control frames and detects the close
	go func() {
		defer close(done)
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		r.hub.unsubscribe(ch)
		_ = c.Close()
	}()
	for {
		select {
		case event, ok := <-ch:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			b, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
