package param

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// Originator tags a parameter write with the identity of its writer so
// observers can tell their own writes apart from foreign ones.
type Originator uint64

// HostOriginator marks writes made by the host or the unit itself
// (automation, preset recall, internal clamping).
const HostOriginator Originator = 0

var lastOriginator atomic.Uint64

// NewOriginator returns a process-unique originator tag.
func NewOriginator() Originator {
	return Originator(lastOriginator.Add(1))
}

// Token identifies an observer registration. It carries no ownership.
type Token uint64

// Observer is notified after every write to a tree, on the writer's goroutine.
type Observer func(address uint64, value float64, origin Originator)

type observerEntry struct {
	token Token
	fn    Observer
}

// Tree is the render-plane parameter store of one unit instance. Values
// are held in atomics so the render context reads them without locking;
// the observer list is copy-on-write.
type Tree struct {
	table  *Table
	values []atomic.Uint64

	mu        sync.Mutex // serializes observer list updates
	nextToken Token
	observers atomic.Pointer[[]observerEntry]
}

// NewTree creates a store holding the table defaults.
func NewTree(table *Table) *Tree {
	t := &Tree{
		table:  table,
		values: make([]atomic.Uint64, table.Len()),
	}

	for i := range t.values {
		t.values[i].Store(math.Float64bits(table.At(i).Default))
	}

	empty := []observerEntry{}
	t.observers.Store(&empty)

	return t
}

// Table returns the descriptor table backing the tree.
func (t *Tree) Table() *Table {
	return t.table
}

// Value returns the current value at addr.
func (t *Tree) Value(addr uint64) (float64, bool) {
	i, ok := t.table.slot(addr)
	if !ok {
		return 0, false
	}

	return math.Float64frombits(t.values[i].Load()), true
}

// ValueOf returns the current value of the named parameter.
func (t *Tree) ValueOf(name string) (float64, error) {
	d, err := t.table.Lookup(name)
	if err != nil {
		return 0, err
	}

	v, _ := t.Value(d.Address)

	return v, nil
}

// SetValue clamps value to the descriptor range, stores it and notifies
// every observer with the originator tag. Observers run synchronously on
// the caller's goroutine after the store, so an observer may see a value
// that a later write has already replaced.
func (t *Tree) SetValue(addr uint64, value float64, origin Originator) error {
	i, ok := t.table.slot(addr)
	if !ok {
		return fmt.Errorf("%w: address %d", ErrUnknownParameter, addr)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}

	value = t.table.At(i).Clamp(value)
	t.values[i].Store(math.Float64bits(value))

	for _, o := range *t.observers.Load() {
		o.fn(addr, value, origin)
	}

	return nil
}

// Observe registers fn and returns the token that removes it again.
func (t *Tree) Observe(fn Observer) Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextToken++
	tok := t.nextToken

	next := slices.Clone(*t.observers.Load())
	next = append(next, observerEntry{token: tok, fn: fn})
	t.observers.Store(&next)

	return tok
}

// RemoveObserver unregisters the observer behind tok. A notification that
// already loaded the previous observer list may still reach it once.
func (t *Tree) RemoveObserver(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := *t.observers.Load()

	idx := slices.IndexFunc(cur, func(o observerEntry) bool { return o.token == tok })
	if idx < 0 {
		return false
	}

	next := slices.Delete(slices.Clone(cur), idx, idx+1)
	t.observers.Store(&next)

	return true
}

// Observers returns the number of registered observers.
func (t *Tree) Observers() int {
	return len(*t.observers.Load())
}
