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

// Package assert provides the small set of assertions used by the tests.
package assert

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// Equal fails the test when expected and actual are not deeply equal.
func Equal(t testing.TB, expected, actual interface{}, msgs ...string) {
	t.Helper()
	if !ObjectsAreEqual(expected, actual) {
		t.Errorf("Not equal: \nexpected: %#v\nactual  : %#v %s", expected, actual, strings.Join(msgs, " "))
	}
}

// NotEqual fails the test when expected and actual are deeply equal.
func NotEqual(t testing.TB, expected, actual interface{}, msgs ...string) {
	t.Helper()
	if ObjectsAreEqual(expected, actual) {
		t.Errorf("Should not be: %#v %s", actual, strings.Join(msgs, " "))
	}
}

// True fails the test when value is false.
func True(t testing.TB, value bool, msgs ...string) {
	t.Helper()
	if !value {
		t.Errorf("Should be true %s", strings.Join(msgs, " "))
	}
}

// False fails the test when value is true.
func False(t testing.TB, value bool, msgs ...string) {
	t.Helper()
	if value {
		t.Errorf("Should be false %s", strings.Join(msgs, " "))
	}
}

// Nil fails the test when object is not nil.
func Nil(t testing.TB, object interface{}, msgs ...string) {
	t.Helper()
	if !isNil(object) {
		t.Errorf("Expected nil, but got: %#v %s", object, strings.Join(msgs, " "))
	}
}

// NotNil fails the test when object is nil.
func NotNil(t testing.TB, object interface{}, msgs ...string) {
	t.Helper()
	if isNil(object) {
		t.Errorf("Expected value not to be nil %s", strings.Join(msgs, " "))
	}
}

// ErrorIs fails the test when err does not wrap target.
func ErrorIs(t testing.TB, err, target error, msgs ...string) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("Error %v is not %v %s", err, target, strings.Join(msgs, " "))
	}
}

// ObjectsAreEqual compares two values, treating byte slices by content.
func ObjectsAreEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return isNil(expected) && isNil(actual)
	}
	exp, ok := expected.([]byte)
	if !ok {
		return reflect.DeepEqual(expected, actual)
	}
	act, ok := actual.([]byte)
	if !ok {
		return false
	}
	return string(exp) == string(act)
}

func isNil(object interface{}) bool {
	if object == nil {
		return true
	}
	value := reflect.ValueOf(object)
	switch value.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return value.IsNil()
	}
	return false
}
