// Package threadpool bridges blocking work into the cooperative executor.
// A fixed set of worker goroutines drains a bounded job queue; jobs queued
// past capacity panic rather than block the submitter, matching the
// source's atomic_coll::Queue::push behavior in executor/thread.rs. Results
// cross back to the executor via a one-shot buffered channel wrapped in a
// Future that busy-polls, mirroring the source's Actor/Promise types in
// executor/mod.rs and future/promise.rs.
package threadpool

import (
	"errors"
	"log"
	"sync"

	"coophttp/internal/atomicx"
	"coophttp/internal/task"
)

// job is a unit of blocking work submitted to the pool.
type job func()

// Pool owns a bounded job queue and a fixed worker goroutine set. Workers
// park (via condition variable wait) when the queue is empty, and are woken
// whenever a job is pushed, mirroring the source's thread::park/unpark pair.
type Pool struct {
	jobs    *atomicx.Queue[job]
	cond    *sync.Cond
	workers int

	mu      sync.Mutex
	running bool
}

// New constructs a pool with workerCount workers draining a queue of the
// given fixed capacity. Call Start to launch the workers.
func New(workerCount, capacity int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	p := &Pool{
		jobs:    atomicx.NewQueue[job]("thread pool job", capacity),
		workers: workerCount,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the worker goroutines. Calling Start twice is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		go p.workerLoop()
	}
}

// Stop signals worker goroutines to exit once they next wake. A worker
// still runs any jobs left in the queue and exits once it finds the queue
// empty.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// workerLoop holds p.mu around every pop-or-wait decision so a job pushed
// concurrently can never land in the gap between a worker finding the queue
// empty and that worker going to sleep on the condition variable: Run takes
// the same lock around push+broadcast, so the two sides are fully
// serialized and no wakeup is ever lost.
func (p *Pool) workerLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		j, ok := p.jobs.Pop()
		if ok {
			p.mu.Unlock()
			runJob(j)
			p.mu.Lock()
			continue
		}
		if !p.running {
			return
		}
		p.cond.Wait()
	}
}

// runJob recovers a panicking job so it unwinds no further than this call:
// an unrecovered panic in any goroutine terminates the whole process, which
// would take every other worker and every connection down with it. The
// panicking job is dropped and the worker keeps looping for the next one.
func runJob(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("threadpool: job panicked, dropping it: %v", r)
		}
	}()
	j()
}

// Run submits fn for execution on a worker goroutine without waiting for a
// result, the fire-and-forget variant the source calls thread_run.
func (p *Pool) Run(fn func()) {
	p.mu.Lock()
	p.jobs.Push(job(fn))
	p.cond.Broadcast()
	p.mu.Unlock()
}

// ErrWorkerDisconnected is Err's value once a ThreadAwait's worker dies
// without ever sending a result (its job panicked). spec.md §7 calls this
// case fatal to the dependent task: the future settles Ready rather than
// re-arming its waker and busy-polling forever against a channel nothing
// will ever write to again.
var ErrWorkerDisconnected = errors.New("threadpool: worker disconnected without producing a result")

// awaitFuture bridges a blocking call's result back into the executor. It
// implements task.ValueFuture[T]; callers that need to distinguish a
// disconnected worker from a real result call Err after Poll returns
// task.Ready, the same Ready-then-Err shape WriteResponseFuture uses.
type awaitFuture[T any] struct {
	result chan T
	value  T
	done   bool
	err    error
}

// ThreadAwait submits fn to run on a worker goroutine and returns a Future
// that resolves to fn's return value once the worker completes. The
// submitting executor task suspends (Pending) until then, busy-polling on
// every wake the same way the source's Actor future retries try_recv. If fn
// panics, the job's own recover closes the result channel instead of
// letting the panic escape onto the shared worker loop, so the failure is
// attributed to this one future (ErrWorkerDisconnected) rather than
// silently dropped by the pool's generic per-job recovery.
func ThreadAwait[T any](p *Pool, fn func() T) *awaitFuture[T] {
	f := &awaitFuture[T]{result: make(chan T, 1)}
	p.Run(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("threadpool: thread-await job panicked: %v", r)
				close(f.result)
			}
		}()
		f.result <- fn()
	})
	return f
}

func (f *awaitFuture[T]) Poll(cx task.Context) task.Poll {
	if f.done {
		return task.Ready
	}
	select {
	case v, ok := <-f.result:
		if !ok {
			f.err = ErrWorkerDisconnected
			f.done = true
			return task.Ready
		}
		f.value = v
		f.done = true
		return task.Ready
	default:
		cx.Waker().Wake()
		return task.Pending
	}
}

// Value returns the result fn produced. Valid only once Poll has returned
// task.Ready and Err is nil.
func (f *awaitFuture[T]) Value() T {
	return f.value
}

// Err reports ErrWorkerDisconnected if the worker died without sending a
// result. Valid only once Poll has returned task.Ready.
func (f *awaitFuture[T]) Err() error {
	return f.err
}
