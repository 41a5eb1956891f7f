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

package types

// Consumable is implemented by operators whose output can be consumed:
// an operator connecting its input to them adopts their endpoints.
type Consumable interface {
	IsConsumable() bool
}

// Subscribable is implemented by operators that accept subscribers:
// a subscriber may aggregate the topics of several of them.
type Subscribable interface {
	IsSubscribable() bool
}

// ConsumerCapable is implemented by operators able to become consumers.
type ConsumerCapable interface {
	CanConsume() bool
}

// IsConsumableOperator reports whether v declares itself consumable or subscribable.
func IsConsumableOperator(v interface{}) bool {
	if c, ok := v.(Consumable); ok && c.IsConsumable() {
		return true
	}
	return IsSubscribableOperator(v)
}

// IsSubscribableOperator reports whether v declares itself subscribable.
func IsSubscribableOperator(v interface{}) bool {
	s, ok := v.(Subscribable)
	return ok && s.IsSubscribable()
}

// IsConsumerCapable reports whether v can consume from a consumable operator.
func IsConsumerCapable(v interface{}) bool {
	c, ok := v.(ConsumerCapable)
	return ok && c.CanConsume()
}
