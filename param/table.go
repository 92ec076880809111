package param

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownParameter is returned for names or addresses not present in a table.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrInvalidDescriptor is returned when a descriptor fails validation.
	ErrInvalidDescriptor = errors.New("invalid parameter descriptor")
	// ErrInvalidValue is returned for NaN or infinite parameter values.
	ErrInvalidValue = errors.New("invalid parameter value")
)

// Table is the static, per-unit-type descriptor table. It never changes
// after construction and is safe for concurrent use.
type Table struct {
	descs  []Descriptor
	byName map[string]int
	byAddr map[uint64]int
}

// NewTable validates the descriptors and indexes them by name and address.
// Order is preserved for iteration.
func NewTable(descs ...Descriptor) (*Table, error) {
	t := &Table{
		descs:  make([]Descriptor, 0, len(descs)),
		byName: make(map[string]int, len(descs)),
		byAddr: make(map[uint64]int, len(descs)),
	}

	for _, d := range descs {
		err := d.validate()
		if err != nil {
			return nil, err
		}

		if _, exists := t.byName[d.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidDescriptor, d.Name)
		}

		if _, exists := t.byAddr[d.Address]; exists {
			return nil, fmt.Errorf("%w: duplicate address %d (%q)", ErrInvalidDescriptor, d.Address, d.Name)
		}

		t.byName[d.Name] = len(t.descs)
		t.byAddr[d.Address] = len(t.descs)
		t.descs = append(t.descs, d)
	}

	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic("param: " + err.Error())
	}

	return t
}

// Len returns the number of descriptors.
func (t *Table) Len() int {
	return len(t.descs)
}

// Lookup returns the descriptor for name.
func (t *Table) Lookup(name string) (Descriptor, error) {
	i, ok := t.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	return t.descs[i], nil
}

// ByAddress returns the descriptor registered under addr.
func (t *Table) ByAddress(addr uint64) (Descriptor, bool) {
	i, ok := t.byAddr[addr]
	if !ok {
		return Descriptor{}, false
	}

	return t.descs[i], true
}

// At returns the descriptor at position i in declaration order.
func (t *Table) At(i int) Descriptor {
	return t.descs[i]
}

// All returns a copy of all descriptors in declaration order.
func (t *Table) All() []Descriptor {
	out := make([]Descriptor, len(t.descs))
	copy(out, t.descs)

	return out
}

// Defaults returns the default value of every parameter keyed by name.
func (t *Table) Defaults() map[string]float64 {
	out := make(map[string]float64, len(t.descs))
	for _, d := range t.descs {
		out[d.Name] = d.Default
	}

	return out
}

func (t *Table) slot(addr uint64) (int, bool) {
	i, ok := t.byAddr[addr]
	return i, ok
}
