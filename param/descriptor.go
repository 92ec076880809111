package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxhost/dsp/core"
)

// Descriptor is the immutable metadata of one unit parameter.
type Descriptor struct {
	Name    string  // unique within a unit, e.g. "centerFrequency"
	Address uint64  // render-side dispatch key
	Min     float64 // inclusive lower bound
	Max     float64 // inclusive upper bound
	Default float64
	Unit    string // display unit, e.g. "Hz"
}

// Clamp limits v to the descriptor range. NaN is not clamped; callers
// reject it before it reaches a parameter store.
func (d Descriptor) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}

	return core.Clamp(v, d.Min, d.Max)
}

// Contains reports whether v lies inside the descriptor range.
func (d Descriptor) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name (address %d)", ErrInvalidDescriptor, d.Address)
	}

	if !core.IsFinite(d.Min) || !core.IsFinite(d.Max) || !core.IsFinite(d.Default) {
		return fmt.Errorf("%w: %q has non-finite range or default", ErrInvalidDescriptor, d.Name)
	}

	if d.Min > d.Max {
		return fmt.Errorf("%w: %q min %g > max %g", ErrInvalidDescriptor, d.Name, d.Min, d.Max)
	}

	if !d.Contains(d.Default) {
		return fmt.Errorf("%w: %q default %g outside [%g, %g]", ErrInvalidDescriptor, d.Name, d.Default, d.Min, d.Max)
	}

	return nil
}

// Builder provides a fluent API for creating descriptors.
type Builder struct {
	desc Descriptor
}

// New starts a descriptor with range [0, 1] and default 0.
func New(address uint64, name string) *Builder {
	return &Builder{
		desc: Descriptor{
			Name:    name,
			Address: address,
			Min:     0,
			Max:     1,
		},
	}
}

// Range sets the valid value range.
func (b *Builder) Range(min, max float64) *Builder {
	b.desc.Min = min
	b.desc.Max = max

	return b
}

// Default sets the default value in plain units.
func (b *Builder) Default(value float64) *Builder {
	b.desc.Default = value
	return b
}

// Unit sets the display unit.
func (b *Builder) Unit(unit string) *Builder {
	b.desc.Unit = unit
	return b
}

// Build returns the configured descriptor. Validation happens when the
// descriptor is added to a Table.
func (b *Builder) Build() Descriptor {
	return b.desc
}
