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
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rulego/sysdesign"
	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/endpoint/mqtt"
	"github.com/rulego/sysdesign/endpoint/rest"
	"github.com/rulego/sysdesign/engine"
	client "github.com/rulego/sysdesign/utils/mqtt"
)

const (
	version = "1.0.0"
)

var (
	//是否是查询版本
	ver bool
	//配置文件
	configFile string
)

func init() {
	flag.StringVar(&configFile, "c", "", "配置文件")
	flag.BoolVar(&ver, "v", false, "打印版本")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("sysdesign server v%s", version)
		os.Exit(0)
	}

	c, err := LoadConfig(configFile)
	if err != nil {
		log.Fatal("error:", err)
	}
	logger := initLogger(c)
	logger.Printf("use config file=%s \n", configFile)

	topology := newTopology(c, logger)

	var publisher *mqtt.Mqtt
	if c.Mqtt.Enabled {
		publisher = newPublisher(c, topology)
		ctx, cancel := context.WithTimeout(context.Background(), c.Mqtt.ConnectTimeout)
		err := publisher.Start(ctx)
		cancel()
		if err != nil {
			log.Fatal("mqtt error:", err)
		}
		logger.Printf("publishing events to mqtt server=%s", c.Mqtt.Server)
	}

	restEndpoint := rest.New(rest.Config{Server: c.Server, AllowCors: c.AllowCors}, topology)
	if err := restEndpoint.Start(); err != nil {
		log.Fatal("error:", err)
	}

	sigs := make(chan os.Signal, 1)
	// 监听系统信号，包括中断信号和终止信号
	signal.Notify(sigs, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	restEndpoint.Stop()
	if publisher != nil {
		publisher.Stop()
	}
	topology.Close()
	logger.Println("stopped server")
}

func newTopology(c Config, logger *log.Logger) *engine.Topology {
	return sysdesign.New(
		types.WithLogger(logger),
		types.WithDebug(c.Debug),
		types.WithStreamInterval(c.StreamInterval),
		types.WithHopLatency(c.HopLatency),
		types.WithMaxHops(c.MaxHops),
		types.WithProperties(c.Global),
	)
}

func newPublisher(c Config, topology *engine.Topology) *mqtt.Mqtt {
	return mqtt.New(mqtt.Config{
		Client: client.Config{
			Server:   c.Mqtt.Server,
			Username: c.Mqtt.Username,
			Password: c.Mqtt.Password,
			ClientID: c.Mqtt.ClientId,
		},
		Topic: c.Mqtt.Topic,
		Qos:   c.Mqtt.Qos,
	}, topology)
}

// 初始化日志记录器
func initLogger(c Config) *log.Logger {
	if c.LogFile == "" {
		return log.New(os.Stdout, "", log.LstdFlags)
	}
	f, err := os.OpenFile(c.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		log.Fatal(err)
	}
	return log.New(f, "", log.LstdFlags)
}
