package atomicx

import "testing"

func TestMapDefaultEntry(t *testing.T) {
	m := NewMap[string, int]()
	calls := 0
	mk := func() int {
		calls++
		return 42
	}
	if v := m.DefaultEntry("a", mk); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if v := m.DefaultEntry("a", mk); v != 42 {
		t.Fatalf("expected 42 on second call, got %d", v)
	}
	if calls != 1 {
		t.Fatalf("expected make to run once, ran %d times", calls)
	}
}

func TestMapInsertGetRemove(t *testing.T) {
	m := NewMap[int, string]()
	if _, had := m.Insert(1, "one"); had {
		t.Fatal("expected no previous value")
	}
	v, ok := m.Get(1)
	if !ok || v != "one" {
		t.Fatalf("expected (one, true), got (%s, %v)", v, ok)
	}
	prev, had := m.Insert(1, "uno")
	if !had || prev != "one" {
		t.Fatalf("expected previous value one, got (%s, %v)", prev, had)
	}
	removed, ok := m.Remove(1)
	if !ok || removed != "uno" {
		t.Fatalf("expected removed uno, got (%s, %v)", removed, ok)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty map after remove, got len %d", m.Len())
	}
}
