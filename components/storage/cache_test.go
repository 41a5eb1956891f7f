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

package storage

import (
	"testing"
	"time"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/test"
	"github.com/rulego/sysdesign/test/assert"
)

func newCache(t *testing.T, configuration types.Configuration) *Cache {
	op, err := test.CreateAndInitOperator("cache", configuration, Registry)
	assert.Nil(t, err)
	return op.(*Cache)
}

// client -> cache -> db
func cacheTopology(t *testing.T, configuration types.Configuration) (*test.ProbeOperator, *Cache, *Database, *test.Events) {
	c := newCache(t, configuration)
	db := newDatabase(t, types.Configuration{"tables": []string{"users"}})
	client := test.NewProbe(testConfig, "client")
	assert.NotNil(t, c.ConnectTo(client, false, true))
	assert.NotNil(t, c.ConnectTo(db, true, false))
	events := test.NewEvents(32)
	c.OnEvent(events.Listener())
	return client, c, db, events
}

func statusCodes(events []types.Event) []int {
	var codes []int
	for _, ev := range events {
		if ev.Type == types.EventStatusCode {
			codes = append(codes, ev.Code)
		}
	}
	return codes
}

func TestCacheNew(t *testing.T) {
	test.OperatorNew(t, "cache", &Cache{}, Registry)
	c := newCache(t, nil)
	assert.Equal(t, "1m", c.Options().Ttl)
	assert.Equal(t, types.WriteThrough, c.Options().WritePolicy)
	assert.True(t, types.IsConsumerCapable(c))
	assert.False(t, c.OutputPort.IsMulti())

	_, err := test.CreateAndInitOperator("cache", types.Configuration{"ttl": "soon"}, Registry)
	assert.NotNil(t, err)
}

func TestCacheRead(t *testing.T) {
	client, c, db, events := cacheTopology(t, nil)
	defer c.Destroy()
	assert.Equal(t, 1, len(c.GetAvailableEndpoints()))
	assert.Equal(t, "users", c.GetAvailableEndpoints()[0].Url)

	// miss: forwarded, answered by the database, kept
	miss := send(t, client, "users", types.GET, "")
	responses := client.Responses()
	assert.Equal(t, 1, len(responses))
	assert.Equal(t, miss.RequestId, responses[0].ResponseId)
	assert.Equal(t, types.StatusOK, responses[0].Status)
	assert.Equal(t, []int{types.StatusCacheMiss}, statusCodes(events.Drain()))
	assert.True(t, c.Store().Has("users"))

	// hit: answered by the cache
	hit := send(t, client, "users", types.GET, "")
	responses = client.Responses()
	assert.Equal(t, 2, len(responses))
	assert.Equal(t, hit.RequestId, responses[1].ResponseId)
	assert.Equal(t, types.StatusCacheHit, responses[1].Status)
	assert.Equal(t, responses[0].Body, responses[1].Body)
	assert.Equal(t, []int{types.StatusCacheHit}, statusCodes(events.Drain()))
	assert.Equal(t, 0, c.Table.Len())
	assert.Equal(t, 0, len(db.Records("users")))

	// nothing behind serves the url
	send(t, client, "orders", types.GET, "")
	assert.Equal(t, 2, len(client.Responses()))
}

func TestCacheWritePolicies(t *testing.T) {
	t.Run("WriteThrough", func(t *testing.T) {
		client, c, db, _ := cacheTopology(t, nil)
		defer c.Destroy()
		send(t, client, "users", types.POST, "a")
		assert.Equal(t, "a", c.Store().Get("users"))
		assert.Equal(t, 1, len(db.Records("users")))
		assert.Equal(t, types.StatusOK, client.Responses()[0].Status)
	})
	t.Run("WriteAround", func(t *testing.T) {
		client, c, db, _ := cacheTopology(t, types.Configuration{"writePolicy": "WriteAround"})
		defer c.Destroy()
		_ = c.Store().Set("users", "old", "")
		send(t, client, "users", types.POST, "a")
		assert.False(t, c.Store().Has("users"))
		assert.Equal(t, 1, len(db.Records("users")))
	})
	t.Run("WriteBack", func(t *testing.T) {
		client, c, db, _ := cacheTopology(t, types.Configuration{"writePolicy": "WriteBack"})
		defer c.Destroy()
		send(t, client, "users", types.POST, "a")
		assert.Equal(t, 1, len(client.Responses()))
		assert.Equal(t, "a", c.Store().Get("users"))
		assert.True(t, test.WaitFor(time.Second, func() bool {
			return len(db.Records("users")) == 1
		}))
		// the late database answer is owed to nobody
		assert.Equal(t, 1, len(client.Responses()))
	})
}

func TestCacheSingleBackend(t *testing.T) {
	_, c, db, _ := cacheTopology(t, nil)
	defer c.Destroy()
	db2 := newDatabase(t, nil)
	assert.NotNil(t, c.ConnectTo(db2, true, false))
	assert.Equal(t, 1, c.OutputPort.Len())
	assert.Equal(t, 0, db.InputPort.Len())
	assert.Equal(t, DefaultTable, c.GetAvailableEndpoints()[0].Url)
}
