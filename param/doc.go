// Package param holds parameter metadata and the render-plane parameter
// store of processing units.
//
// A [Table] is the static descriptor table registered with a unit type.
// A [Tree] is the live store of one unit instance: the render context reads
// values lock-free, writers tag every write with an [Originator], and
// observers receive (address, value, originator) after each write.
package param
