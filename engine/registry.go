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

package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rulego/sysdesign/api/types"
)

// Registry is the default registry of operator components.
// Component packages register themselves into it from init.
var Registry = new(OperatorRegistry)

// SafeOperatorSlice 安全的组件列表切片
// Component packages collect their variants in one and the root package
// registers them all into the default Registry.
type SafeOperatorSlice struct {
	components []Operator
	sync.Mutex
}

// Add 线程安全地添加元素
func (p *SafeOperatorSlice) Add(operators ...Operator) {
	p.Lock()
	defer p.Unlock()
	p.components = append(p.components, operators...)
}

// Components 获取组件列表
func (p *SafeOperatorSlice) Components() []Operator {
	p.Lock()
	defer p.Unlock()
	return append([]Operator(nil), p.components...)
}

// OperatorRegistry 组件注册器
type OperatorRegistry struct {
	components map[string]Operator
	sync.RWMutex
}

// Register adds a component. It fails if `operator.Type()` already exists.
func (r *OperatorRegistry) Register(operator Operator) error {
	r.Lock()
	defer r.Unlock()
	if r.components == nil {
		r.components = make(map[string]Operator)
	}
	if _, ok := r.components[operator.Type()]; ok {
		return fmt.Errorf("%w: componentType=%s", types.ErrComponentExists, operator.Type())
	}
	r.components[operator.Type()] = operator
	return nil
}

// Unregister removes a component.
func (r *OperatorRegistry) Unregister(componentType string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.components[componentType]; !ok {
		return fmt.Errorf("%w: componentType=%s", types.ErrComponentNotFound, componentType)
	}
	delete(r.components, componentType)
	return nil
}

// NewOperator creates an uninitialised instance of the component.
func (r *OperatorRegistry) NewOperator(componentType string) (Operator, error) {
	r.RLock()
	defer r.RUnlock()
	if operator, ok := r.components[componentType]; ok {
		return operator.New(), nil
	}
	return nil, fmt.Errorf("%w: componentType=%s", types.ErrComponentNotFound, componentType)
}

// Types returns the registered component types, sorted.
func (r *OperatorRegistry) Types() []string {
	r.RLock()
	defer r.RUnlock()
	list := make([]string, 0, len(r.components))
	for k := range r.components {
		list = append(list, k)
	}
	sort.Strings(list)
	return list
}

// CreateOperator creates an operator from the registry and initialises it.
// An empty id gets a generated one.
func CreateOperator(registry *OperatorRegistry, componentType, id string, config types.Config, configuration types.Configuration) (Operator, error) {
	operator, err := registry.NewOperator(componentType)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = NewRequestId()
	}
	operator.SetId(id)
	if configuration == nil {
		configuration = types.Configuration{}
	}
	if err := operator.Init(config, configuration); err != nil {
		return nil, fmt.Errorf("init %s %s: %w", componentType, id, err)
	}
	return operator, nil
}
