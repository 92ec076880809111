// Package effects provides the built-in processing units and registers them
// with a component registry.
//
//   - aufx/peq0/AuKt: peaking parametric equalizer (RBJ biquad)
//   - aufx/rvsc/AuKt: Costello-style feedback delay network reverb
package effects
