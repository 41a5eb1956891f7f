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

import "time"

// EventType 引擎事件类型
type EventType string

const (
	// EventDataReceived an operator accepted a message.
	EventDataReceived EventType = "DATA_RECEIVED"
	// EventSendFailed a message could not be delivered.
	EventSendFailed EventType = "SEND_FAILED"
	// EventStatusCode an operator reports a status code.
	EventStatusCode EventType = "STATUS_CODE"
)

// Event is emitted by operators for display purposes only. The engine
// never depends on how, or whether, events are consumed.
type Event struct {
	Type         EventType `json:"type"`
	OperatorId   string    `json:"operatorId"`
	OperatorType string    `json:"operatorType"`
	RequestId    string    `json:"requestId,omitempty"`
	ResponseId   string    `json:"responseId,omitempty"`
	Url          string    `json:"url,omitempty"`
	Stream       bool      `json:"stream,omitempty"`
	Code         int       `json:"code,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Ts           int64     `json:"ts"`
}

// NewEvent creates an event stamped with the current time in milliseconds.
func NewEvent(eventType EventType, operatorId, operatorType string) Event {
	return Event{
		Type:         eventType,
		OperatorId:   operatorId,
		OperatorType: operatorType,
		Ts:           time.Now().UnixMilli(),
	}
}

// EventListener receives operator events.
type EventListener func(event Event)
