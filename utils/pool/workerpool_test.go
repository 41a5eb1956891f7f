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

package pool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool(t *testing.T) {
	wp := &WorkerPool{MaxWorkersCount: 200000}
	wp.Start()
	defer wp.Stop()
	var n int32
	fn := func() {
		atomic.AddInt32(&n, 1)
	}

	for i := 0; i < 10000; i++ {
		if wp.Submit(fn) != nil {
			t.Fatalf("cannot submit function #%d", i)
		}
	}

	time.Sleep(time.Second)

	if atomic.LoadInt32(&n) != 10000 {
		t.Fatalf("unexpected number of served functions: %d. Expecting %d", atomic.LoadInt32(&n), 10000)
	}
	wp.Release()
	if err := wp.Submit(fn); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestWorkerPoolExhausted(t *testing.T) {
	wp := &WorkerPool{MaxWorkersCount: 1}
	wp.Start()
	defer wp.Stop()
	block := make(chan struct{})
	if err := wp.Submit(func() { <-block }); err != nil {
		t.Fatal(err)
	}
	if err := wp.Submit(func() {}); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	close(block)
}

func TestWorkerPoolRecoversPanic(t *testing.T) {
	var recovered int32
	wp := &WorkerPool{MaxWorkersCount: 1, OnPanic: func(v interface{}) {
		atomic.AddInt32(&recovered, 1)
	}}
	wp.Start()
	defer wp.Stop()
	_ = wp.Submit(func() { panic("boom") })
	time.Sleep(time.Millisecond * 100)
	var n int32
	if err := wp.Submit(func() { atomic.AddInt32(&n, 1) }); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond * 100)
	if atomic.LoadInt32(&recovered) != 1 || atomic.LoadInt32(&n) != 1 {
		t.Fatalf("worker did not survive panic: recovered=%d served=%d", recovered, n)
	}
}

func TestWorkerPoolIdleClean(t *testing.T) {
	wp := &WorkerPool{MaxWorkersCount: 10, MaxIdleWorkerDuration: time.Millisecond * 50}
	wp.Start()
	defer wp.Stop()
	for i := 0; i < 5; i++ {
		_ = wp.Submit(func() {})
	}
	time.Sleep(time.Millisecond * 300)
	if c := wp.WorkersCount(); c != 0 {
		t.Fatalf("idle workers not cleaned: %d", c)
	}
}
