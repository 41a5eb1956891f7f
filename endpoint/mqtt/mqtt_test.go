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

package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rulego/sysdesign"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/components/client"
	"github.com/rulego/sysdesign/test"
	"github.com/rulego/sysdesign/test/assert"
	"github.com/rulego/sysdesign/utils/json"
	mqttClient "github.com/rulego/sysdesign/utils/mqtt"
)

type message struct {
	topic string
	qos   byte
	data  []byte
}

type recorder struct {
	lock     sync.Mutex
	messages []message
	fail     bool
}

func (r *recorder) Publish(topic string, qos byte, data []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.fail {
		return errors.New("broker unavailable")
	}
	r.messages = append(r.messages, message{topic: topic, qos: qos, data: data})
	return nil
}

func (r *recorder) Messages() []message {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]message(nil), r.messages...)
}

func TestTopic(t *testing.T) {
	topology := sysdesign.New()
	defer topology.Close()
	m := New(Config{}, topology)
	event := types.NewEvent(types.EventStatusCode, "gw", "api")
	event.Code = 202
	assert.Equal(t, "sysdesign/gw/STATUS_CODE", m.Topic(event))

	m.Config.Topic = "events/${operatorType}/${code}"
	assert.Equal(t, "events/api/202", m.Topic(event))
}

func TestPublishEvents(t *testing.T) {
	topology := sysdesign.New()
	defer topology.Close()
	m := New(Config{Qos: 1}, topology)
	r := &recorder{}

	c, _ := topology.AddOperator("c1", "client", nil)
	_, _ = topology.AddOperator("gw", "api", nil)
	_, err := topology.Connect("c1", "gw")
	assert.Nil(t, err)

	// nothing is published before start
	_, err = c.(*client.Client).Request(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(r.Messages()))

	assert.Nil(t, m.StartWith(r))
	assert.NotNil(t, m.StartWith(r))
	_, err = c.(*client.Client).Request(context.Background())
	assert.Nil(t, err)

	// gw received, c1 received and status code
	assert.True(t, test.WaitFor(time.Second, func() bool { return len(r.Messages()) == 3 }))
	messages := r.Messages()
	assert.Equal(t, "sysdesign/gw/DATA_RECEIVED", messages[0].topic)
	assert.Equal(t, byte(1), messages[0].qos)
	var event types.Event
	assert.Nil(t, json.Unmarshal(messages[0].data, &event))
	assert.Equal(t, "gw", event.OperatorId)
	assert.Equal(t, "api/posts", event.Url)
	assert.Equal(t, "sysdesign/c1/STATUS_CODE", messages[2].topic)

	m.Stop()
	m.Stop()
	_, err = c.(*client.Client).Request(context.Background())
	assert.Nil(t, err)
	time.Sleep(time.Millisecond * 20)
	assert.Equal(t, 3, len(r.Messages()))

	// restart after stop
	r.fail = true
	assert.Nil(t, m.StartWith(r))
	_, err = c.(*client.Client).Request(context.Background())
	assert.Nil(t, err)
	m.Stop()
	assert.Equal(t, 3, len(r.Messages()))
}

func TestDropWhenFull(t *testing.T) {
	topology := sysdesign.New()
	defer topology.Close()
	m := New(Config{BufferSize: 1}, topology)
	blocked := make(chan struct{})
	assert.Nil(t, m.StartWith(publisherFunc(func(topic string, qos byte, data []byte) error {
		<-blocked
		return nil
	})))
	for i := 0; i < 10; i++ {
		m.onEvent(types.NewEvent(types.EventDataReceived, "x", "api"))
	}
	assert.True(t, m.Dropped() >= 8)
	close(blocked)
	m.Stop()
}

type publisherFunc func(topic string, qos byte, data []byte) error

func (f publisherFunc) Publish(topic string, qos byte, data []byte) error {
	return f(topic, qos, data)
}

func TestStartUnreachable(t *testing.T) {
	topology := sysdesign.New()
	defer topology.Close()
	m := New(Config{Client: mqttClient.Config{Server: "tcp://127.0.0.1:1"}}, topology)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()
	assert.NotNil(t, m.Start(ctx))
	m.Stop()
}
