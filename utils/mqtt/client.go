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

// Package mqtt provides the MQTT client used to publish operator events to a
// broker. It wraps the Paho client with TLS, authentication, reconnection and
// a context-bound initial connection.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rulego/sysdesign/utils/str"
)

// ErrNotConnected the client lost its broker connection.
var ErrNotConnected = errors.New("MQTT client is not connected")

// Config 客户端配置
type Config struct {
	//mqtt broker 地址
	Server string
	//用户名
	Username string
	//密码
	Password string
	//重连重试间隔
	MaxReconnectInterval time.Duration
	QOS                  uint8
	CleanSession         bool
	//client Id，为空则随机生成
	ClientID    string
	CAFile      string
	CertFile    string
	CertKeyFile string
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if c.Server == "" {
		return errors.New("mqtt server can not be empty")
	}
	return nil
}

// Client mqtt客户端
type Client struct {
	client      paho.Client
	isConnected int32
}

// NewClient 创建一个MQTT客户端实例
// It retries the first connection every 2 seconds until it succeeds or ctx is done.
func NewClient(ctx context.Context, conf Config) (*Client, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	b := &Client{}

	opts := paho.NewClientOptions()
	opts.AddBroker(conf.Server)
	opts.SetUsername(conf.Username)
	opts.SetPassword(conf.Password)
	opts.SetCleanSession(conf.CleanSession)
	if conf.ClientID == "" {
		//随机clientId
		opts.SetClientID("sysdesign/" + str.RandomStr(8))
	} else {
		opts.SetClientID(conf.ClientID)
	}
	opts.SetOnConnectHandler(b.onConnected)
	opts.SetConnectionLostHandler(b.onConnectionLost)
	if conf.MaxReconnectInterval <= 0 {
		conf.MaxReconnectInterval = time.Second * 60
	}
	opts.SetMaxReconnectInterval(conf.MaxReconnectInterval)

	tlsconfig, err := newTLSConfig(conf.CAFile, conf.CertFile, conf.CertKeyFile)
	if err != nil {
		return nil, fmt.Errorf("error loading mqtt certificate files,ca_cert=%s,tls_cert=%s,tls_key=%s: %w", conf.CAFile, conf.CertFile, conf.CertKeyFile, err)
	}
	if tlsconfig != nil {
		opts.SetTLSConfig(tlsconfig)
	}
	b.client = paho.NewClient(opts)

	for {
		token := b.client.Connect()
		if token.Wait() && token.Error() == nil {
			break
		}
		select {
		case <-ctx.Done():
			//context被取消或超时，返回错误
			return nil, token.Error()
		case <-time.After(2 * time.Second):
		}
	}
	return b, nil
}

// IsConnected reports whether the broker connection is up.
func (b *Client) IsConnected() bool {
	return b.client != nil && atomic.LoadInt32(&b.isConnected) == 1
}

// Publish 发布数据
func (b *Client) Publish(topic string, qos byte, data []byte) error {
	if !b.IsConnected() {
		return ErrNotConnected
	}
	if token := b.client.Publish(topic, qos, false, data); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects, waiting up to 500ms for pending work.
func (b *Client) Close() error {
	atomic.StoreInt32(&b.isConnected, 0)
	if b.client != nil {
		b.client.Disconnect(500)
	}
	return nil
}

func (b *Client) onConnected(c paho.Client) {
	atomic.StoreInt32(&b.isConnected, 1)
}

func (b *Client) onConnectionLost(c paho.Client, reason error) {
	atomic.StoreInt32(&b.isConnected, 0)
}

func newTLSConfig(CAFile, certFile, certKeyFile string) (*tls.Config, error) {
	if CAFile == "" && certFile == "" && certKeyFile == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{}

	// Import trusted certificates from CAFile.pem.
	if CAFile != "" {
		caCert, err := os.ReadFile(CAFile)
		if err != nil {
			return nil, err
		}
		certPool := x509.NewCertPool()
		certPool.AppendCertsFromPEM(caCert)
		tlsConfig.RootCAs = certPool
	}

	// Import certificate and the key
	if certFile != "" && certKeyFile != "" {
		kp, err := tls.LoadX509KeyPair(certFile, certKeyFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{kp}
	}
	return tlsConfig, nil
}
