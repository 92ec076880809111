package core

import "testing"

func TestEnsureLenReusesCapacity(t *testing.T) {
	buf := make([]float64, 2, 8)

	got := EnsureLen(buf, 6)
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}

	if &got[0] != &buf[0] {
		t.Fatal("expected capacity to be reused")
	}
}

func TestEnsureLenGrows(t *testing.T) {
	got := EnsureLen(nil, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	if got := EnsureLen(got, 0); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}
