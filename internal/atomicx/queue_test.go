package atomicx

import "testing"

func TestQueuePushPop(t *testing.T) {
	q := NewQueue[int]("test", 3)
	q.Push(1)
	q.Push(2)
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}
	v, ok := q.Pop()
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}
	if _, ok := q.Pop(); !ok {
		t.Fatal("expected second pop to succeed")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected pop on empty queue to fail")
	}
}

func TestQueueCapacityStaysFixedAcrossChurn(t *testing.T) {
	q := NewQueue[int]("test", 2)
	for i := 0; i < 1000; i++ {
		q.Push(i)
		if got := q.Cap(); got != 2 {
			t.Fatalf("capacity drifted to %d after %d push/pop cycles", got, i)
		}
		if _, ok := q.Pop(); !ok {
			t.Fatal("expected pop to succeed immediately after push")
		}
	}
}

func TestQueuePushPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overflow")
		}
	}()
	q := NewQueue[int]("overflow", 1)
	q.Push(1)
	q.Push(2)
}

func TestUniquePushCoalesces(t *testing.T) {
	q := NewQueue[int]("unique", 2)
	UniquePush(q, 7)
	UniquePush(q, 7)
	if q.Len() != 1 {
		t.Fatalf("expected single entry after duplicate UniquePush, got %d", q.Len())
	}
}

func TestQueueIsEmpty(t *testing.T) {
	q := NewQueue[string]("empty", 1)
	if !q.IsEmpty() {
		t.Fatal("expected new queue to be empty")
	}
	q.Push("x")
	if q.IsEmpty() {
		t.Fatal("expected non-empty queue after push")
	}
}
