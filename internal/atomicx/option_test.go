package atomicx

import "testing"

func TestOptionSetGetTake(t *testing.T) {
	o := NewOption[int]()
	if o.IsSome() {
		t.Fatal("expected new option to be empty")
	}
	o.Set(5)
	v, ok := o.Get()
	if !ok || v != 5 {
		t.Fatalf("expected (5, true), got (%d, %v)", v, ok)
	}
	taken, ok := o.Take()
	if !ok || taken != 5 {
		t.Fatalf("expected take to return (5, true), got (%d, %v)", taken, ok)
	}
	if o.IsSome() {
		t.Fatal("expected option to be empty after take")
	}
}
