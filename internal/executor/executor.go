// Package executor implements the single-threaded cooperative task runtime:
// spawn a Future, run a ready pass, repeat. Grounded on the source's
// async_lib/src/executor/mod.rs (Executor + thread-local spawn_task/
// executor_loop) and src/server/executor.rs (the BTreeMap task table plus
// waker_cache entry pattern generalized here with internal/atomicx.Map).
package executor

import (
	"coophttp/internal/atomicx"
	"coophttp/internal/task"
	"coophttp/internal/waker"
)

// DefaultReadyQueueCapacity is the ready queue size used when Config leaves
// ReadyQueueCapacity at zero.
const DefaultReadyQueueCapacity = 1000

// Config controls executor construction. The zero value is usable: New
// treats a ReadyQueueCapacity of zero or less as DefaultReadyQueueCapacity.
type Config struct {
	ReadyQueueCapacity int
}

// NewConfig returns a Config with the default ready queue capacity.
func NewConfig() Config {
	return Config{ReadyQueueCapacity: DefaultReadyQueueCapacity}
}

// Executor is confined to a single goroutine: spawn, RunReadyPass, and any
// Future's Poll it drives must all happen on the same goroutine. This
// mirrors the source's thread_local! Executor — there is no language-level
// enforcement in Go, so callers must not share an Executor across
// goroutines.
type Executor struct {
	tasks      *atomicx.Map[task.Id, task.Future]
	ready      *waker.ReadyQueue
	wakerCache *atomicx.Map[task.Id, waker.Waker]
}

// New constructs an Executor per cfg.
func New(cfg Config) *Executor {
	capacity := cfg.ReadyQueueCapacity
	if capacity <= 0 {
		capacity = DefaultReadyQueueCapacity
	}
	return &Executor{
		tasks:      atomicx.NewMap[task.Id, task.Future](),
		ready:      waker.NewReadyQueue(capacity),
		wakerCache: atomicx.NewMap[task.Id, waker.Waker](),
	}
}

// Spawn registers future under a freshly allocated task id and schedules it
// for its first poll. Returns the id so the caller can correlate this task
// with external state if needed (the core itself never needs to).
func (e *Executor) Spawn(future task.Future) task.Id {
	id := task.NewId()
	e.tasks.Insert(id, future)
	e.ready.Push(id)
	return id
}

// RunReadyPass drains the ready queue once, polling every task id currently
// queued. Tasks that wake themselves back onto the queue during this pass
// (including a task re-queued by its own poll call) are polled again within
// the same pass, matching the source's run_ready_tasks draining the whole
// queue rather than a fixed snapshot.
func (e *Executor) RunReadyPass() {
	for {
		id, ok := e.ready.Pop()
		if !ok {
			return
		}
		e.pollOne(id)
	}
}

func (e *Executor) pollOne(id task.Id) {
	future, ok := e.tasks.Get(id)
	if !ok {
		// Task finished or was never spawned; a stale wake arriving after
		// completion is expected and silently dropped, matching the
		// source's `None => continue`.
		return
	}

	w := e.wakerCache.DefaultEntry(id, func() waker.Waker {
		return waker.New(id, e.ready)
	})
	cx := waker.NewContext(w)

	if future.Poll(cx) == task.Ready {
		e.tasks.Remove(id)
		e.wakerCache.Remove(id)
	}
}

// TaskCount reports the number of tasks currently held by the executor,
// spawned but not yet resolved to Ready. Exposed for metrics.
func (e *Executor) TaskCount() int {
	return e.tasks.Len()
}

// IsIdle reports whether the ready queue is currently empty. A caller
// driving the serving loop uses this to decide whether to block on I/O
// (accept, thread-pool results) before the next ready pass, rather than
// busy-spinning RunReadyPass.
func (e *Executor) IsIdle() bool {
	return e.ready.IsEmpty()
}
