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

import "errors"

var (
	// ErrEmptyRequestId a message without request id.
	ErrEmptyRequestId = errors.New("request id can not be empty")
	// ErrNilEndpoint a message without endpoint reference.
	ErrNilEndpoint = errors.New("endpoint can not be nil")
	// ErrNoTargetConnection neither the connection table nor the message names a connection.
	ErrNoTargetConnection = errors.New("target connection is nil")
	// ErrConnectionClosed the connection was removed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrPortNotFound the operator has no such port.
	ErrPortNotFound = errors.New("port not found")
	// ErrIncompatibleAlgorithm the balancing algorithm is not allowed for the balancer type.
	ErrIncompatibleAlgorithm = errors.New("balancing algorithm not supported by balancer type")
	// ErrUnknownEnumValue an enum name could not be parsed.
	ErrUnknownEnumValue = errors.New("unknown value")
	// ErrOperatorNotFound no operator with the id.
	ErrOperatorNotFound = errors.New("operator not found")
	// ErrOperatorExists an operator with the id already exists.
	ErrOperatorExists = errors.New("operator already exists")
	// ErrComponentNotFound no component registered with the type.
	ErrComponentNotFound = errors.New("component not found")
	// ErrComponentExists a component with the type is already registered.
	ErrComponentExists = errors.New("component already exists")
	// ErrConnectionRefused one of the operators does not accept the connection.
	ErrConnectionRefused = errors.New("connection refused")
	// ErrNotConnected the operator has no usable connection.
	ErrNotConnected = errors.New("not connected")
	// ErrHopLimitExceeded an exchange crossed more connections than allowed, usually a cycle.
	ErrHopLimitExceeded = errors.New("hop limit exceeded")
	// ErrStreamNotFound no open stream for the request id.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrDestroyed the operator was destroyed.
	ErrDestroyed = errors.New("operator destroyed")
)
