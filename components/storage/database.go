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
	"strings"
	"sync"

	"github.com/rulego/sysdesign/api/types"
	"github.com/rulego/sysdesign/engine"
	"github.com/rulego/sysdesign/utils/json"
	"github.com/rulego/sysdesign/utils/maps"
)

// Registry 存储组件列表
var Registry = &engine.SafeOperatorSlice{}

func init() {
	Registry.Add(&Database{}, &Cache{})
}

// DefaultTable is the table of a database created without tables.
const DefaultTable = "table"

// DatabaseConfiguration 节点配置
type DatabaseConfiguration struct {
	// Title 显示名称
	Title string `json:"title"`
	// Type of the simulated store
	Type types.DatabaseType `json:"type"`
	// Tables default ["table"]
	Tables []string `json:"tables"`
}

// Record is one stored row.
type Record struct {
	Id   string `json:"id"`
	Body string `json:"body"`
}

// Database 数据库节点
type Database struct {
	engine.EndpointOperator
	config DatabaseConfiguration

	lock    sync.RWMutex
	records map[string][]Record
}

func (d *Database) New() engine.Operator {
	return &Database{}
}

// Type 组件类型
func (d *Database) Type() string {
	return "database"
}

// Init 初始化
func (d *Database) Init(config types.Config, configuration types.Configuration) error {
	c := DatabaseConfiguration{Title: "Database"}
	if err := maps.Map2Struct(configuration, &c); err != nil {
		return err
	}
	if len(c.Tables) == 0 {
		c.Tables = []string{DefaultTable}
	}
	d.config = c
	d.records = make(map[string][]Record)
	d.InputPort = engine.NewPort(d, false, true)
	d.OutputPort = engine.NewPort(d, true, true)
	d.Setup(d, config)
	d.SetEndpoints(nil)
	for _, table := range c.Tables {
		d.AddTable(table)
	}
	return nil
}

// Options returns the configuration with the current tables.
func (d *Database) Options() DatabaseConfiguration {
	c := d.config
	c.Tables = d.Tables()
	return c
}

// IsConsumable operators connecting their input to the database consume its change feed.
func (d *Database) IsConsumable() bool {
	return true
}

// CanConnectTo the input only accepts operators able to consume.
func (d *Database) CanConnectTo(port *engine.Port, connectingWithOutput bool) bool {
	if !d.BaseOperator.CanConnectTo(port, connectingWithOutput) {
		return false
	}
	return connectingWithOutput || types.IsConsumerCapable(port.Parent())
}

// AddTable adds a table, named DefaultTable when blank.
func (d *Database) AddTable(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		name = DefaultTable
	}
	if _, ok := d.FindEndpoint(name); ok {
		return name, false
	}
	d.AddEndpoint(types.NewEndpoint(name))
	return name, true
}

// RemoveTable removes a table and its records.
func (d *Database) RemoveTable(name string) bool {
	if !d.RemoveEndpoint(name) {
		return false
	}
	d.lock.Lock()
	delete(d.records, name)
	d.lock.Unlock()
	return true
}

// Tables returns the table names.
func (d *Database) Tables() []string {
	var tables []string
	for _, ep := range d.Endpoints() {
		tables = append(tables, ep.Url)
	}
	return tables
}

// Records returns the rows of a table.
func (d *Database) Records(table string) []Record {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]Record(nil), d.records[table]...)
}

// ReceiveData 处理收到的数据
func (d *Database) ReceiveData(ctx context.Context, data *engine.RequestData, fromOutput bool) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if fromOutput {
		d.Config().Debugf("database %s: message from consumer %s dropped", d.Id(), data.RequestId)
		return nil
	}
	table, ok := d.FindEndpoint(data.Url())
	if !ok {
		d.Config().Debugf("database %s: no table %s, dropped", d.Id(), data.Url())
		return nil
	}
	d.FireReceiveData(data)

	resp := data.Response(types.StatusOK, false)
	method := data.Method()
	if method.IsWrite() {
		d.write(table.Url, method, data)
		d.publish(ctx, table, data)
	} else {
		resp.Body = d.read(table.Url)
	}
	_ = d.SendData(ctx, resp)
	return nil
}

func (d *Database) write(table string, method types.HTTPMethod, data *engine.RequestData) {
	d.lock.Lock()
	defer d.lock.Unlock()
	rows := d.records[table]
	switch method {
	case types.DELETE:
		rows = nil
	case types.PUT, types.PATCH:
		if n := len(rows); n > 0 {
			rows[n-1] = Record{Id: rows[n-1].Id, Body: data.Body}
			break
		}
		rows = append(rows, Record{Id: data.RequestId, Body: data.Body})
	default:
		rows = append(rows, Record{Id: data.RequestId, Body: data.Body})
	}
	d.records[table] = rows
}

func (d *Database) read(table string) string {
	b, err := json.Marshal(d.Records(table))
	if err != nil {
		return ""
	}
	return string(b)
}

// publish sends a write to every consumer of the table.
func (d *Database) publish(ctx context.Context, table types.Endpoint, data *engine.RequestData) {
	ref := types.EndpointRef{Endpoint: table, Method: data.Method()}
	for _, conn := range d.OutputPort.Connections() {
		far := conn.GetOtherPort(d.OutputPort)
		if far == nil || !engine.Advertises(far.Parent(), table.Url, true) {
			continue
		}
		_ = d.Send(ctx, conn, data.Derive(ref, conn))
	}
}
