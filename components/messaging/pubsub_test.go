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

package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/components/gateway"
	"github.com/rulego/sysdesign/test"
	"github.com/rulego/sysdesign/test/assert"
)

var testConfig = types.NewConfig()

func newPubSub(t *testing.T, configuration types.Configuration) *PubSub {
	op, err := test.CreateAndInitOperator("pubSub", configuration, Registry)
	assert.Nil(t, err)
	return op.(*PubSub)
}

func TestPubSubNew(t *testing.T) {
	test.OperatorNew(t, "pubSub", &PubSub{}, Registry)
	p := newPubSub(t, nil)
	assert.Equal(t, []string{DefaultTopic}, p.Topics())
	assert.True(t, p.IsSubscribable())
	assert.True(t, types.IsConsumableOperator(p))
	assert.True(t, p.Endpoints()[0].Equal(types.NewEndpoint(DefaultTopic)))

	name, added := p.AddTopic("  ")
	assert.Equal(t, DefaultTopic, name)
	assert.False(t, added)
	_, added = p.AddTopic("orders.created")
	assert.True(t, added)
	assert.Equal(t, []string{DefaultTopic, "orders.created"}, p.Topics())
	assert.True(t, p.RemoveTopic(DefaultTopic))
	assert.False(t, p.RemoveTopic(DefaultTopic))

	p = newPubSub(t, types.Configuration{"topics": []string{"a", "b"}})
	assert.Equal(t, []string{"a", "b"}, p.Topics())
}

func TestPublish(t *testing.T) {
	p := newPubSub(t, types.Configuration{"topics": []string{"orders", "users"}})
	defer p.Destroy()
	publisher := test.NewProbe(testConfig, "publisher")
	assert.NotNil(t, p.ConnectTo(publisher, false, true))
	orders := test.NewProbe(testConfig, "orders", types.NewEndpoint("orders"))
	users := test.NewProbe(testConfig, "users", types.NewEndpoint("users"))
	all := test.NewProbe(testConfig, "all")
	for _, sub := range []*test.ProbeOperator{orders, users, all} {
		assert.NotNil(t, p.ConnectTo(sub, true, false))
	}
	events := test.NewEvents(16)
	p.OnEvent(events.Listener())
	ctx := context.Background()

	req, err := publisher.Request(ctx, "orders", types.POST, false)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(orders.Requests()))
	assert.Equal(t, 0, len(users.Requests()))
	assert.Equal(t, 1, len(all.Requests()))
	assert.Equal(t, "orders", orders.Requests()[0].Url())
	assert.Equal(t, types.POST, orders.Requests()[0].Method())

	acks := publisher.Responses()
	assert.Equal(t, 1, len(acks))
	assert.Equal(t, req.RequestId, acks[0].ResponseId)
	assert.Equal(t, types.StatusAccepted, acks[0].Status)
	list := events.Drain()
	assert.Equal(t, 1, test.Count(list, types.EventDataReceived))
	assert.Equal(t, 1, test.Count(list, types.EventStatusCode))

	// unknown topic: dropped, no ack
	_, err = publisher.Request(ctx, "payments", types.POST, false)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(publisher.Responses()))

	// stream frames are not acknowledged
	_, _ = publisher.Request(ctx, "users", types.PUT, true)
	assert.Equal(t, 1, len(users.Requests()))
	assert.True(t, users.Requests()[0].Header.Stream)
	assert.Equal(t, 1, len(publisher.Responses()))
}

func TestAsyncPublish(t *testing.T) {
	p := newPubSub(t, types.Configuration{"async": true})
	defer p.Destroy()
	publisher := test.NewProbe(testConfig, "publisher")
	assert.NotNil(t, p.ConnectTo(publisher, false, true))
	sub := test.NewProbe(testConfig, "sub", types.NewEndpoint(DefaultTopic))
	assert.NotNil(t, p.ConnectTo(sub, true, false))

	_, _ = publisher.Request(context.Background(), DefaultTopic, types.POST, false)
	assert.Equal(t, 1, len(publisher.Responses()))
	assert.True(t, test.WaitFor(time.Second, func() bool {
		return len(sub.Requests()) == 1
	}))
}

func TestGatewaySubscriber(t *testing.T) {
	p := newPubSub(t, types.Configuration{"topics": []string{"orders"}})
	defer p.Destroy()
	publisher := test.NewProbe(testConfig, "publisher")
	assert.NotNil(t, p.ConnectTo(publisher, false, true))

	op, err := test.CreateAndInitOperator("api", nil, gateway.Registry)
	assert.Nil(t, err)
	api := op.(*gateway.API)
	defer api.Destroy()
	assert.NotNil(t, api.ConnectTo(p, false, true))

	endpoints := api.Endpoints()
	assert.Equal(t, 1, len(endpoints))
	assert.Equal(t, "orders", endpoints[0].Url)
	consumer, subscriber := api.ConsumerMode()
	assert.True(t, consumer)
	assert.True(t, subscriber)

	events := test.NewEvents(8)
	api.OnEvent(events.Listener())
	_, _ = publisher.Request(context.Background(), "orders", types.POST, false)
	assert.Equal(t, 1, test.Count(events.Drain(), types.EventDataReceived))
	assert.Equal(t, 0, api.Table.Len())

	// the subscriber follows topic changes of the broker it listens to
	p.AddTopic("users")
	assert.Equal(t, 2, len(api.GetConsumableEndpoints()))
}
