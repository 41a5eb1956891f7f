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
	"time"

	"gopkg.in/ini.v1"
)

// Config 服务配置
type Config struct {
	// Server http服务器地址
	Server string `ini:"server"`
	// LogFile 日志文件，为空则输出到标准输出
	LogFile string `ini:"log_file"`
	// Debug 是否打印丢弃的消息
	Debug bool `ini:"debug"`
	// AllowCors 是否允许跨域
	AllowCors bool `ini:"allow_cors"`
	// StreamInterval 流数据帧间隔
	StreamInterval time.Duration `ini:"stream_interval"`
	// HopLatency 每一跳模拟的传输延迟
	HopLatency time.Duration `ini:"hop_latency"`
	// MaxHops 单次请求最多经过的连接数
	MaxHops int `ini:"max_hops"`
	// Mqtt 事件发布配置
	Mqtt Mqtt `ini:"mqtt"`
	// Global 全局自定义配置
	Global map[string]string `ini:"-"`
}

// Mqtt 事件发布配置
type Mqtt struct {
	Enabled  bool   `ini:"enabled"`
	Server   string `ini:"server"`
	Username string `ini:"username"`
	Password string `ini:"password"`
	ClientId string `ini:"client_id"`
	// Topic 发布主题模板
	Topic string `ini:"topic"`
	Qos   uint8  `ini:"qos"`
	// ConnectTimeout 启动时连接broker的超时时间
	ConnectTimeout time.Duration `ini:"connect_timeout"`
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	Server:         ":9090",
	StreamInterval: 700 * time.Millisecond,
	MaxHops:        64,
	Mqtt: Mqtt{
		Server:         "tcp://127.0.0.1:1883",
		Topic:          "sysdesign/${operatorId}/${type}",
		ConnectTimeout: 10 * time.Second,
	},
}

// LoadConfig reads an ini file over DefaultConfig. An empty file name returns the defaults.
func LoadConfig(file string) (Config, error) {
	c := DefaultConfig
	if file == "" {
		return c, nil
	}
	cfg, err := ini.Load(file)
	if err != nil {
		return c, err
	}
	if err := cfg.MapTo(&c); err != nil {
		return c, err
	}
	if section, err := cfg.GetSection("global"); err == nil {
		c.Global = section.KeysHash()
	}
	return c, nil
}
