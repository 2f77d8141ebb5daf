package executor

import (
	"testing"

	"coophttp/internal/task"
)

// countdownFuture becomes Ready after n polls, waking itself each time it
// stays Pending.
type countdownFuture struct {
	remaining int
}

func (f *countdownFuture) Poll(cx task.Context) task.Poll {
	f.remaining--
	if f.remaining <= 0 {
		return task.Ready
	}
	cx.Waker().Wake()
	return task.Pending
}

func TestSpawnAndRunReadyPassResolvesTask(t *testing.T) {
	e := New(NewConfig())
	f := &countdownFuture{remaining: 3}
	id := e.Spawn(f)

	if e.TaskCount() != 1 {
		t.Fatalf("expected 1 spawned task, got %d", e.TaskCount())
	}

	// A future that re-wakes itself resolves within a single ready pass
	// because self-wakes re-enter the same drain loop.
	e.RunReadyPass()

	if e.TaskCount() != 0 {
		t.Fatalf("expected task %d to be resolved and removed, got count %d", id, e.TaskCount())
	}
	if !e.IsIdle() {
		t.Fatal("expected ready queue empty after drain")
	}
}

func TestRunReadyPassIgnoresStaleWake(t *testing.T) {
	e := New(NewConfig())
	f := &countdownFuture{remaining: 1}
	id := e.Spawn(f)
	e.RunReadyPass()

	// The task has completed; a wake for it arriving now is stale, and the
	// next pass must skip it rather than poll the finished future or panic.
	e.ready.Push(id)
	e.RunReadyPass()

	if f.remaining != 0 || e.TaskCount() != 0 || !e.IsIdle() {
		t.Fatalf("expected stale wake to be dropped, got remaining %d count %d idle %v", f.remaining, e.TaskCount(), e.IsIdle())
	}
}

func TestSpawnMultipleTasksIndependent(t *testing.T) {
	e := New(NewConfig())
	a := &countdownFuture{remaining: 1}
	b := &countdownFuture{remaining: 2}
	e.Spawn(a)
	e.Spawn(b)

	e.RunReadyPass()

	if e.TaskCount() != 0 {
		t.Fatalf("expected both tasks resolved, got count %d", e.TaskCount())
	}
}
