package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}

func TestEnsureLenGrowAndEmpty(t *testing.T) {
	buf := make([]float64, 2)
	if out := EnsureLen(buf, 5); len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	if out := EnsureLen(buf, 0); len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}
