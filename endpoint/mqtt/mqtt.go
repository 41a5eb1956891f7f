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

// Package mqtt publishes the events of a topology to an MQTT broker, one
// message per event on a topic derived from the event:
//
//	publisher := mqtt.New(mqtt.Config{Client: client.Config{Server: "tcp://127.0.0.1:1883"}}, topology)
//	if err := publisher.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer publisher.Stop()
package mqtt

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/json"
	client "github.com/rulego/sysdesign/utils/mqtt"
	"github.com/rulego/sysdesign/utils/str"
)

// DefaultTopic 默认发布主题，支持 ${operatorId} ${operatorType} ${type} ${requestId} ${code} 变量
const DefaultTopic = "sysdesign/${operatorId}/${type}"

const defaultBufferSize = 1024

// Config 事件发布配置
type Config struct {
	Client client.Config
	// Topic template, default DefaultTopic
	Topic string
	Qos   byte
	// BufferSize events buffered before publishing, default 1024
	BufferSize int
}

// Publisher sends one message to the broker.
type Publisher interface {
	Publish(topic string, qos byte, data []byte) error
}

// Mqtt 事件发布端点
type Mqtt struct {
	Config   Config
	Topology *engine.Topology
	Logger   types.Logger

	lock      sync.Mutex
	publisher Publisher
	closer    func() error
	events    chan types.Event
	done      chan struct{}
	stopped   chan struct{}
	dropped   int64
}

// New creates the publisher. Nothing is sent before Start.
func New(config Config, topology *engine.Topology) *Mqtt {
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}
	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}
	logger := topology.Config().Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}
	m := &Mqtt{Config: config, Topology: topology, Logger: logger}
	topology.OnEvent(m.onEvent)
	return m
}

// Start connects to the broker, retrying until ctx is done, then publishes events.
func (m *Mqtt) Start(ctx context.Context) error {
	c, err := client.NewClient(ctx, m.Config.Client)
	if err != nil {
		return err
	}
	if err := m.StartWith(c); err != nil {
		_ = c.Close()
		return err
	}
	m.lock.Lock()
	m.closer = c.Close
	m.lock.Unlock()
	return nil
}

// StartWith publishes events through publisher.
func (m *Mqtt) StartWith(publisher Publisher) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.publisher != nil {
		return errors.New("mqtt publisher already started")
	}
	m.publisher = publisher
	m.events = make(chan types.Event, m.Config.BufferSize)
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})
	go m.loop(publisher, m.events, m.done, m.stopped)
	return nil
}

// Stop publishes what is buffered, then disconnects.
func (m *Mqtt) Stop() {
	m.lock.Lock()
	if m.publisher == nil {
		m.lock.Unlock()
		return
	}
	close(m.done)
	stopped, closer := m.stopped, m.closer
	m.publisher, m.closer, m.events = nil, nil, nil
	m.lock.Unlock()

	<-stopped
	if closer != nil {
		_ = closer()
	}
}

// Dropped returns the number of events lost because the buffer was full.
func (m *Mqtt) Dropped() int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.dropped
}

// Topic returns the topic an event is published on.
func (m *Mqtt) Topic(event types.Event) string {
	return str.SprintfDict(m.Config.Topic, map[string]string{
		"operatorId":   event.OperatorId,
		"operatorType": event.OperatorType,
		"type":         string(event.Type),
		"requestId":    event.RequestId,
		"code":         strconv.Itoa(event.Code),
	})
}

func (m *Mqtt) onEvent(event types.Event) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.events == nil {
		return
	}
	select {
	case m.events <- event:
	default:
		m.dropped++
	}
}

func (m *Mqtt) loop(publisher Publisher, events chan types.Event, done, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case event := <-events:
			m.publish(publisher, event)
		case <-done:
			for {
				select {
				case event := <-events:
					m.publish(publisher, event)
				default:
					return
				}
			}
		}
	}
}

func (m *Mqtt) publish(publisher Publisher, event types.Event) {
	b, err := json.Marshal(event)
	if err != nil {
		return
	}
	topic := m.Topic(event)
	if err := publisher.Publish(topic, m.Config.Qos, b); err != nil {
		m.Logger.Printf("mqtt publish error,topic=%s: %v", topic, err)
	}
}
