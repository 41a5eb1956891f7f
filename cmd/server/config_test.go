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

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rulego/sysdesign/test/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		c, err := LoadConfig("")
		assert.Nil(t, err)
		assert.Equal(t, ":9090", c.Server)
		assert.Equal(t, 700*time.Millisecond, c.StreamInterval)
		assert.Equal(t, 64, c.MaxHops)
		assert.False(t, c.Mqtt.Enabled)
	})

	t.Run("File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "config.conf")
		content := `server = :8080
debug = true
stream_interval = 50ms
hop_latency = 5ms
max_hops = 8

[mqtt]
enabled = true
server = tcp://broker:1883
topic = events/${operatorId}
qos = 1

[global]
region = eu
`
		assert.Nil(t, os.WriteFile(file, []byte(content), 0644))
		c, err := LoadConfig(file)
		assert.Nil(t, err)
		assert.Equal(t, ":8080", c.Server)
		assert.True(t, c.Debug)
		assert.Equal(t, 50*time.Millisecond, c.StreamInterval)
		assert.Equal(t, 5*time.Millisecond, c.HopLatency)
		assert.Equal(t, 8, c.MaxHops)
		assert.True(t, c.Mqtt.Enabled)
		assert.Equal(t, "tcp://broker:1883", c.Mqtt.Server)
		assert.Equal(t, "events/${operatorId}", c.Mqtt.Topic)
		assert.Equal(t, uint8(1), c.Mqtt.Qos)
		//未配置的项保持默认值
		assert.Equal(t, 10*time.Second, c.Mqtt.ConnectTimeout)
		assert.Equal(t, "eu", c.Global["region"])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "none.conf"))
		assert.NotNil(t, err)
	})
}

func TestNewTopology(t *testing.T) {
	c := DefaultConfig
	c.StreamInterval = 20 * time.Millisecond
	topology := newTopology(c, initLogger(c))
	defer topology.Close()
	assert.Equal(t, 20*time.Millisecond, topology.Config().StreamInterval)
	assert.Equal(t, 64, topology.Config().MaxHops)
}
