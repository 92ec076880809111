// Package node hosts opaque processing units as controllable graph nodes.
//
// A [Node] is usable as soon as [Host.NewNode] returns: parameter writes and
// start/stop requests are accepted while the unit is still being
// instantiated and are applied once it exists. The [Binding] keeps a
// control-side mirror of every parameter in sync with the unit's render-side
// [param.Tree] in both directions, and the [Toggle] buffers activation
// requests until a unit is bound.
package node
