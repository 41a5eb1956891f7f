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

// Package messaging provides the publish/subscribe broker operator.
//
// Publishers connect to the broker input, subscribers to its output. A
// gateway connecting its input to a broker becomes a subscriber and adopts
// the broker topics.
package messaging

import (
	"context"
	"strings"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/maps"
)

// Registry 消息组件列表
var Registry = &engine.SafeOperatorSlice{}

func init() {
	Registry.Add(&PubSub{})
}

// DefaultTopic is the name given to topics created without one.
const DefaultTopic = "topic"

// PubSubConfiguration 节点配置
type PubSubConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Topics default ["topic"]
	Topics []string `json:"topics"`
	// Async delivers publications to subscribers on the pool instead of in the publisher call.
	Async bool `json:"async"`
}

// PubSub 发布订阅节点
// Every publication on a topic is delivered to each subscriber advertising
// the topic, or advertising nothing at all, and acknowledged to the publisher.
type PubSub struct {
	engine.EndpointOperator
	config PubSubConfiguration
}

func (p *PubSub) New() engine.Operator {
	return &PubSub{}
}

// Type 组件类型
func (p *PubSub) Type() string {
	return "pubSub"
}

// Init 初始化
func (p *PubSub) Init(config types.Config, configuration types.Configuration) error {
	c := PubSubConfiguration{Title: "PubSub"}
	if err := maps.Map2Struct(configuration, &c); err != nil {
		return err
	}
	if c.Topics == nil {
		c.Topics = []string{DefaultTopic}
	}
	p.config = c
	p.InputPort = engine.NewPort(p, false, true)
	p.OutputPort = engine.NewPort(p, true, true)
	p.Setup(p, config)
	p.SetEndpoints(nil)
	for _, topic := range c.Topics {
		p.AddTopic(topic)
	}
	return nil
}

// IsSubscribable operators connecting their input to the broker subscribe to it.
func (p *PubSub) IsSubscribable() bool {
	return true
}

// AddTopic adds a topic, named DefaultTopic when blank. It returns the name,
// and false if the topic already existed.
func (p *PubSub) AddTopic(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTopic
	}
	if _, ok := p.FindEndpoint(name); ok {
		return name, false
	}
	p.AddEndpoint(types.NewEndpoint(name))
	return name, true
}

// RemoveTopic removes a topic.
func (p *PubSub) RemoveTopic(name string) bool {
	return p.RemoveEndpoint(name)
}

// Topics returns the topic names.
func (p *PubSub) Topics() []string {
	var topics []string
	for _, ep := range p.Endpoints() {
		topics = append(topics, ep.Url)
	}
	return topics
}

// ReceiveData 处理收到的数据
func (p *PubSub) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if fromOutput {
		// subscribers owe no answer
		p.Config().Debugf("pubSub %s: message from subscriber %s dropped", p.Id(), data.RequestId)
		return nil
	}
	topic, ok := p.FindEndpoint(data.Url())
	if !ok {
		p.Config().Debugf("pubSub %s: no topic %s, dropped", p.Id(), data.Url())
		return nil
	}
	p.FireReceiveData(data)

	ref := types.EndpointRef{Endpoint: topic, Method: data.Method()}
	for _, conn := range p.Subscribers(topic.Url) {
		publication := data.Derive(ref, conn)
		publication.Header.Stream = data.Header.Stream
		if p.config.Async {
			c := conn
			p.Config().Submit(func() {
				_ = p.Send(p.Context(), c, publication)
			})
		} else {
			_ = p.Send(ctx, conn, publication)
		}
	}

	if !data.Header.Stream {
		ack := data.Response(types.StatusAccepted, false)
		p.FireStatusCode(ack, types.StatusAccepted)
		_ = p.SendData(ctx, ack)
	}
	return nil
}

// Subscribers returns the output connections subscribed to topic.
func (p *PubSub) Subscribers(topic string) []*engine.Connection {
	var list []*engine.Connection
	for _, conn := range p.OutputPort.Connections() {
		if far := conn.GetOtherPort(p.OutputPort); far != nil && engine.Advertises(far.Parent(), topic, true) {
			list = append(list, conn)
		}
	}
	return list
}
