package waker

import (
	"testing"

	"coophttp/internal/task"
)

func TestWakerPushesTaskOntoQueue(t *testing.T) {
	q := NewReadyQueue(4)
	id := task.NewId()
	w := New(id, q)

	w.Wake()

	got, ok := q.Pop()
	if !ok || got != id {
		t.Fatalf("expected (%d, true), got (%d, %v)", id, got, ok)
	}
}

func TestWakerCoalescesRepeatedWakes(t *testing.T) {
	q := NewReadyQueue(1)
	id := task.NewId()
	w := New(id, q)

	w.Wake()
	w.Wake()
	w.Wake()

	if _, ok := q.Pop(); !ok {
		t.Fatal("expected one queued entry")
	}
	if !q.IsEmpty() {
		t.Fatal("expected queue empty after single pop, coalescing failed")
	}
}

func TestContextExposesWaker(t *testing.T) {
	q := NewReadyQueue(1)
	id := task.NewId()
	cx := NewContext(New(id, q))

	var _ task.Context = cx

	cx.Waker().Wake()
	got, ok := q.Pop()
	if !ok || got != id {
		t.Fatalf("expected waker from context to wake %d, got (%d, %v)", id, got, ok)
	}
}
