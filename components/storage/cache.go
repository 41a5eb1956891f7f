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
	"context"
	"fmt"
	"time"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/cache"
	"github.com/rulego/sysdesign/utils/maps"
)

// CacheConfiguration 节点配置
type CacheConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Ttl of cached answers, e.g. "1m". Empty never expires.
	Ttl string `json:"ttl"`
	// WritePolicy default WriteThrough
	WritePolicy types.WritePolicy `json:"writePolicy"`
}

// Cache 缓存节点
// Reads of a url it holds are answered at once (HIT); other reads are
// forwarded downstream and the answer is kept (MISS). Writes follow the
// write policy.
type Cache struct {
	engine.BaseOperator
	config CacheConfiguration
	store  *cache.MemoryCache
}

func (c *Cache) New() engine.Operator {
	return &Cache{}
}

// Type 组件类型
func (c *Cache) Type() string {
	return "cache"
}

// Init 初始化
func (c *Cache) Init(config types.Config, configuration types.Configuration) error {
	conf := CacheConfiguration{Title: "Cache", Ttl: "1m"}
	if err := maps.Map2Struct(configuration, &conf); err != nil {
		return err
	}
	if conf.Ttl != "" {
		if _, err := time.ParseDuration(conf.Ttl); err != nil {
			return fmt.Errorf("invalid ttl %q: %w", conf.Ttl, err)
		}
	}
	c.config = conf
	c.store = cache.NewMemoryCache(0)
	c.InputPort = engine.NewPort(c, false, true)
	c.OutputPort = engine.NewPort(c, true, false)
	c.Setup(c, config)
	return nil
}

// Options returns the configuration.
func (c *Cache) Options() CacheConfiguration {
	return c.config
}

// CanConsume a cache may front a database.
func (c *Cache) CanConsume() bool {
	return true
}

// DownstreamPort the cache advertises what its backend advertises.
func (c *Cache) DownstreamPort() *engine.Port {
	return c.OutputPort
}

func (c *Cache) GetAvailableEndpoints() []types.Endpoint {
	return engine.ResolveEndpoints(c)
}

// Store returns the cached answers.
func (c *Cache) Store() *cache.MemoryCache {
	return c.store
}

// ReceiveData 处理收到的数据
func (c *Cache) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if fromOutput {
		c.settle(ctx, data)
		return nil
	}
	backend := c.backend(data.Url())
	if backend == nil {
		c.Config().Debugf("cache %s: no backend for %s, dropped", c.Id(), data.Url())
		return nil
	}
	c.FireReceiveData(data)

	key := data.Url()
	method := data.Method()
	switch {
	case !method.IsWrite():
		if v, ok := c.store.Lookup(key); ok {
			c.FireStatusCode(data, types.StatusCacheHit)
			resp := data.Response(types.StatusCacheHit, false)
			resp.Body, _ = v.(string)
			_ = c.SendData(ctx, resp)
			return nil
		}
		c.FireStatusCode(data, types.StatusCacheMiss)
		c.forward(ctx, backend, data)
	case c.config.WritePolicy == types.WriteAround:
		_ = c.store.Delete(key)
		c.forward(ctx, backend, data)
	case c.config.WritePolicy == types.WriteBack:
		_ = c.store.Set(key, data.Body, c.config.Ttl)
		_ = c.SendData(ctx, data.Response(types.StatusOK, false))
		fwd := data.Forward(backend)
		c.Config().Submit(func() {
			_ = c.Send(c.Context(), backend, fwd)
		})
	default:
		_ = c.store.Set(key, data.Body, c.config.Ttl)
		c.forward(ctx, backend, data)
	}
	return nil
}

// forward sends data downstream, the answer is owed to its origin.
func (c *Cache) forward(ctx context.Context, backend *engine.Connection, data *engine.RequestData) {
	c.Table.Set(data.RequestId, data.Origin)
	if err := c.Send(ctx, backend, data.Forward(backend)); err != nil {
		c.Table.Delete(data.RequestId)
	}
}

// settle keeps the answer to a read and relays it upstream.
func (c *Cache) settle(ctx context.Context, data *engine.RequestData) {
	if !c.Table.Has(data.ResponseId) {
		c.Config().Debugf("cache %s: stale response %s, dropped", c.Id(), data.ResponseId)
		return
	}
	c.FireReceiveData(data)
	if !data.Method().IsWrite() && data.Status >= 200 && data.Status < 300 {
		_ = c.store.Set(data.Url(), data.Body, c.config.Ttl)
	}
	_ = c.SendData(ctx, data.Forward(nil))
}

func (c *Cache) backend(url string) *engine.Connection {
	for _, conn := range c.OutputPort.Connections() {
		if far := conn.GetOtherPort(c.OutputPort); far != nil && engine.Advertises(far.Parent(), url, false) {
			return conn
		}
	}
	return nil
}

// Destroy drops the cached answers.
func (c *Cache) Destroy() {
	c.store.Clear()
	c.BaseOperator.Destroy()
}
