// Package task defines the executor's unit of scheduling: a TaskId, the
// type-erased Future interface every poll loop drives, and the Task value
// that pairs the two. Futures carry no Output type parameter at this layer;
// ValueFuture below adds one for code that needs a typed result.
package task

import "sync/atomic"

// Id identifies a spawned task. Ids are never reused within a process.
type Id uint64

var nextID atomic.Uint64

// NewId allocates the next Id from the process-wide counter.
func NewId() Id {
	return Id(nextID.Add(1))
}

// Poll is the result of driving a Future one step.
type Poll int

const (
	// Pending means the future made no further progress this pass and has
	// registered (or will register before returning) a wake for when it can.
	Pending Poll = iota
	// Ready means the future has produced its final value and should be
	// removed from the executor.
	Ready
)

// Waker is the minimal capability a future needs from its wake handle:
// schedule the owning task back onto its ready queue. The concrete type
// (package waker) also supports cloning, so a future can stash it and call
// Wake later from another goroutine (e.g. a thread-pool callback).
type Waker interface {
	Wake()
}

// Context is passed to Future.Poll so a future can reach its Waker. It is
// a minimal interface here so that package task never imports package
// waker; the concrete Context lives in package waker and satisfies this
// structurally.
type Context interface {
	Waker() Waker
}

// Future is the minimal type-erased unit the executor drives. Concrete
// futures (timers, socket reads, thread-pool bridges, handler chains) all
// implement this by holding their own state and advancing it on each Poll.
type Future interface {
	Poll(cx Context) Poll
}

// ValueFuture is a Future that also exposes the value it produced once
// Ready. The executor only needs Future; call sites that spawned a task
// and want its result use ValueFuture directly instead of going through
// the executor's untyped task map.
type ValueFuture[T any] interface {
	Future
	// Value returns the produced value. Valid only after Poll returned
	// Ready; behavior before that is undefined.
	Value() T
}

// FuncFuture adapts a single poll function into a Future, for the common
// case of a future with no extra state beyond a closure.
type FuncFuture func(cx Context) Poll

func (f FuncFuture) Poll(cx Context) Poll { return f(cx) }

// Task pairs an Id with the Future it drives.
type Task struct {
	ID     Id
	Future Future
}

// New allocates a fresh Id and wraps future in a Task.
func New(future Future) Task {
	return Task{ID: NewId(), Future: future}
}
