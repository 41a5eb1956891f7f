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

// Package pool provides the worker pool used to run asynchronous dispatches
// and message deliveries without spawning a goroutine per message.
//
// Package pool 提供用于异步派发和消息投递的协程池。
//
// The design follows valyala/fasthttp workerpool.go: idle workers are kept in
// FILO order so the most recently used worker serves the next task, and workers
// idle longer than MaxIdleWorkerDuration are stopped by a cleaner goroutine.
package pool

import (
	"errors"
	"runtime"
	"sync"
	"time"
)

// ErrPoolExhausted is returned by Submit when MaxWorkersCount workers are busy.
var ErrPoolExhausted = errors.New("no idle workers")

// ErrPoolStopped is returned by Submit after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerPool 工作池
//
//	wp := &WorkerPool{MaxWorkersCount: 100}
//	wp.Start()
//	defer wp.Stop()
//	_ = wp.Submit(func() { ... })
type WorkerPool struct {
	// MaxWorkersCount caps the number of concurrently running workers.
	MaxWorkersCount int
	// MaxIdleWorkerDuration stops workers idle for longer. Default 10s.
	MaxIdleWorkerDuration time.Duration
	// OnPanic receives values recovered from panicking tasks. The worker survives.
	OnPanic func(v interface{})

	lock         sync.Mutex
	workersCount int
	mustStop     bool
	ready        []*workerChan
	stopCh       chan struct{}
	chanPool     sync.Pool
	startOnce    sync.Once
}

type workerChan struct {
	lastUseTime time.Time
	ch          chan func()
}

// workerChanCap is zero on a single CPU so Submit hands over to the worker at once.
var workerChanCap = func() int {
	if runtime.GOMAXPROCS(0) == 1 {
		return 0
	}
	return 1
}()

// Start 启动清理协程
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.lock.Lock()
		wp.stopCh = make(chan struct{})
		stopCh := wp.stopCh
		wp.lock.Unlock()
		wp.chanPool.New = func() interface{} {
			return &workerChan{ch: make(chan func(), workerChanCap)}
		}
		go func() {
			var scratch []*workerChan
			ticker := time.NewTicker(wp.idleDuration())
			defer ticker.Stop()
			for {
				select {
				case <-stopCh:
					return
				case <-ticker.C:
					wp.clean(&scratch)
				}
			}
		}()
	})
}

// Stop stops idle workers; busy workers exit after their current task.
func (wp *WorkerPool) Stop() {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	if wp.stopCh == nil || wp.mustStop {
		return
	}
	close(wp.stopCh)
	for i := range wp.ready {
		wp.ready[i].ch <- nil
		wp.ready[i] = nil
	}
	wp.ready = wp.ready[:0]
	wp.mustStop = true
}

// Release implements types.Pool.
func (wp *WorkerPool) Release() {
	wp.Stop()
}

// Submit hands fn to an idle worker, creating one if below MaxWorkersCount.
func (wp *WorkerPool) Submit(fn func()) error {
	ch, err := wp.getCh()
	if err != nil {
		return err
	}
	ch.ch <- fn
	return nil
}

// WorkersCount returns the number of live workers.
func (wp *WorkerPool) WorkersCount() int {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	return wp.workersCount
}

func (wp *WorkerPool) idleDuration() time.Duration {
	if wp.MaxIdleWorkerDuration <= 0 {
		return 10 * time.Second
	}
	return wp.MaxIdleWorkerDuration
}

// clean stops workers whose last use is older than the idle duration.
// ready is ordered by lastUseTime, so a binary search finds the cut.
func (wp *WorkerPool) clean(scratch *[]*workerChan) {
	criticalTime := time.Now().Add(-wp.idleDuration())

	wp.lock.Lock()
	ready := wp.ready
	n := len(ready)
	l, r := 0, n-1
	for l <= r {
		mid := (l + r) / 2
		if criticalTime.After(ready[mid].lastUseTime) {
			l = mid + 1
		} else {
			r = mid - 1
		}
	}
	if r < 0 {
		wp.lock.Unlock()
		return
	}
	*scratch = append((*scratch)[:0], ready[:r+1]...)
	m := copy(ready, ready[r+1:])
	for i := m; i < n; i++ {
		ready[i] = nil
	}
	wp.ready = ready[:m]
	wp.lock.Unlock()

	tmp := *scratch
	for i := range tmp {
		tmp[i].ch <- nil
		tmp[i] = nil
	}
}

func (wp *WorkerPool) getCh() (*workerChan, error) {
	var ch *workerChan
	createWorker := false

	wp.lock.Lock()
	if wp.mustStop || wp.stopCh == nil {
		wp.lock.Unlock()
		return nil, ErrPoolStopped
	}
	n := len(wp.ready) - 1
	if n < 0 {
		if wp.workersCount < wp.MaxWorkersCount {
			createWorker = true
			wp.workersCount++
		}
	} else {
		ch = wp.ready[n]
		wp.ready[n] = nil
		wp.ready = wp.ready[:n]
	}
	wp.lock.Unlock()

	if ch == nil {
		if !createWorker {
			return nil, ErrPoolExhausted
		}
		v := wp.chanPool.Get()
		ch = v.(*workerChan)
		go func() {
			wp.workerFunc(ch)
			wp.chanPool.Put(v)
		}()
	}
	return ch, nil
}

func (wp *WorkerPool) release(ch *workerChan) bool {
	ch.lastUseTime = time.Now()
	wp.lock.Lock()
	defer wp.lock.Unlock()
	if wp.mustStop {
		return false
	}
	wp.ready = append(wp.ready, ch)
	return true
}

func (wp *WorkerPool) run(fn func()) {
	defer func() {
		if v := recover(); v != nil && wp.OnPanic != nil {
			wp.OnPanic(v)
		}
	}()
	fn()
}

func (wp *WorkerPool) workerFunc(ch *workerChan) {
	for fn := range ch.ch {
		if fn == nil {
			break
		}
		wp.run(fn)
		if !wp.release(ch) {
			break
		}
	}
	wp.lock.Lock()
	wp.workersCount--
	wp.lock.Unlock()
}
