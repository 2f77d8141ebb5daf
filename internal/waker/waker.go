// Package waker implements the executor's wake machinery: a bounded ready
// queue of task ids, an immutable cheap-to-copy Waker tied to one task and
// one queue, and the Context a Future.Poll receives to reach its Waker.
// Grounded on the source's executor/waker.rs TaskWaker, generalized off the
// single legacy Queue into the shared internal/atomicx.Queue.
package waker

import (
	"coophttp/internal/atomicx"
	"coophttp/internal/task"
)

// ReadyQueue is the bounded FIFO of task ids the executor drains each pass.
// It is a thin, named alias over atomicx.Queue so the executor package can
// depend on a domain-specific type rather than the generic collection.
type ReadyQueue struct {
	q *atomicx.Queue[task.Id]
}

// NewReadyQueue creates a ready queue with the given fixed capacity.
func NewReadyQueue(capacity int) *ReadyQueue {
	return &ReadyQueue{q: atomicx.NewQueue[task.Id]("ready", capacity)}
}

// Push schedules id for polling, panicking if the queue is already full.
func (r *ReadyQueue) Push(id task.Id) { r.q.Push(id) }

// PushUnique schedules id only if it is not already queued, coalescing a
// second wake of the same task arriving before it is next polled.
func (r *ReadyQueue) PushUnique(id task.Id) { atomicx.UniquePush(r.q, id) }

// Pop removes and returns the next ready task id, or ok=false if empty.
func (r *ReadyQueue) Pop() (task.Id, bool) { return r.q.Pop() }

// IsEmpty reports whether no task ids are currently queued.
func (r *ReadyQueue) IsEmpty() bool { return r.q.IsEmpty() }

// Waker is an immutable handle tying one TaskId to the queue it wakes onto.
// Copying a Waker is cheap and safe to hand to another goroutine (e.g. a
// thread-pool job closure that wakes the task once its work completes).
type Waker struct {
	id    task.Id
	queue *ReadyQueue
}

// New builds a Waker for id that schedules onto queue when woken.
func New(id task.Id, queue *ReadyQueue) Waker {
	return Waker{id: id, queue: queue}
}

// Wake re-schedules the owning task, coalescing with any pending wake of
// the same task already sitting in the ready queue.
func (w Waker) Wake() {
	w.queue.PushUnique(w.id)
}

// Context is the concrete Context the executor constructs per poll call.
// It satisfies task.Context structurally without task importing this
// package, avoiding an import cycle between task and waker.
type Context struct {
	waker Waker
}

// NewContext wraps waker for a single Future.Poll call.
func NewContext(waker Waker) Context {
	return Context{waker: waker}
}

// Waker returns the task.Waker the future should retain to schedule itself
// back onto the ready queue.
func (c Context) Waker() task.Waker {
	return c.waker
}
