package param

import (
	"errors"
	"math"
	"sync"
	"testing"
)

type recordedWrite struct {
	addr   uint64
	value  float64
	origin Originator
}

type recorder struct {
	mu     sync.Mutex
	writes []recordedWrite
}

func (r *recorder) observe(addr uint64, value float64, origin Originator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes = append(r.writes, recordedWrite{addr: addr, value: value, origin: origin})
}

func (r *recorder) snapshot() []recordedWrite {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]recordedWrite, len(r.writes))
	copy(out, r.writes)

	return out
}

func TestTreeDefaults(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())

	v, ok := tree.Value(0)
	if !ok || v != 1000 {
		t.Fatalf("Value(0) = %v, %v; want 1000", v, ok)
	}

	q, err := tree.ValueOf("q")
	if err != nil || q != 0.707 {
		t.Fatalf("ValueOf(q) = %v, %v; want 0.707", q, err)
	}

	if _, ok := tree.Value(99); ok {
		t.Fatal("expected unknown address to report !ok")
	}
}

func TestTreeSetValueNotifiesWithOriginator(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())
	rec := &recorder{}
	tree.Observe(rec.observe)

	origin := NewOriginator()

	err := tree.SetValue(1, 2.5, origin)
	if err != nil {
		t.Fatalf("SetValue returned unexpected error: %v", err)
	}

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("observer saw %d writes, want 1", len(got))
	}

	if got[0] != (recordedWrite{addr: 1, value: 2.5, origin: origin}) {
		t.Fatalf("observer saw %+v", got[0])
	}
}

func TestTreeSetValueClamps(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())
	rec := &recorder{}
	tree.Observe(rec.observe)

	_ = tree.SetValue(2, 5, HostOriginator)

	v, _ := tree.Value(2)
	if v != 2 {
		t.Fatalf("Value(2) = %v, want clamped 2", v)
	}

	if w := rec.snapshot(); w[0].value != 2 {
		t.Fatalf("observer saw %v, want clamped 2", w[0].value)
	}
}

func TestTreeSetValueErrors(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())

	if err := tree.SetValue(42, 1, HostOriginator); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got: %v", err)
	}

	if err := tree.SetValue(0, math.NaN(), HostOriginator); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got: %v", err)
	}
}

func TestTreeRemoveObserver(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())
	a := &recorder{}
	b := &recorder{}

	tokA := tree.Observe(a.observe)
	tree.Observe(b.observe)

	if tree.Observers() != 2 {
		t.Fatalf("Observers() = %d, want 2", tree.Observers())
	}

	if !tree.RemoveObserver(tokA) {
		t.Fatal("RemoveObserver returned false for a registered token")
	}

	if tree.RemoveObserver(tokA) {
		t.Fatal("RemoveObserver returned true for an already removed token")
	}

	_ = tree.SetValue(0, 440, HostOriginator)

	if len(a.snapshot()) != 0 {
		t.Fatal("removed observer was notified")
	}

	if len(b.snapshot()) != 1 {
		t.Fatal("remaining observer was not notified")
	}
}

func TestNewOriginatorIsUnique(t *testing.T) {
	t.Parallel()

	seen := map[Originator]bool{HostOriginator: true}

	for range 100 {
		o := NewOriginator()
		if seen[o] {
			t.Fatalf("originator %d issued twice", o)
		}

		seen[o] = true
	}
}

func TestTreeConcurrentAccess(t *testing.T) {
	t.Parallel()

	tree := NewTree(peqTable())

	var wg sync.WaitGroup

	wg.Add(3)

	go func() {
		defer wg.Done()

		for i := range 1000 {
			_ = tree.SetValue(1, float64(i%10), HostOriginator)
		}
	}()

	go func() {
		defer wg.Done()

		for range 1000 {
			_, _ = tree.Value(1)
		}
	}()

	go func() {
		defer wg.Done()

		for range 100 {
			tok := tree.Observe(func(uint64, float64, Originator) {})
			tree.RemoveObserver(tok)
		}
	}()

	wg.Wait()

	if tree.Observers() != 0 {
		t.Fatalf("Observers() = %d, want 0", tree.Observers())
	}
}
