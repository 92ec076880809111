package unit

import (
	"sync/atomic"

	"github.com/cwbudde/algo-fxhost/param"
)

// Base implements the bookkeeping part of [Unit] for embedding.
// Embedders supply Process.
type Base struct {
	tree    *param.Tree
	format  Format
	started atomic.Bool

	onStart func() error
}

// NewBase creates a stopped base with a fresh parameter tree.
func NewBase(table *param.Table, format Format) *Base {
	return &Base{
		tree:   param.NewTree(table),
		format: format,
	}
}

// OnStart sets a hook that runs before the unit reports started. An error
// keeps the unit stopped.
func (b *Base) OnStart(fn func() error) {
	b.onStart = fn
}

// Parameters returns the unit's parameter tree.
func (b *Base) Parameters() *param.Tree {
	return b.tree
}

// Format returns the unit's signal format.
func (b *Base) Format() Format {
	return b.format
}

// Start engages the unit.
func (b *Base) Start() error {
	if b.started.Load() {
		return nil
	}

	if b.onStart != nil {
		err := b.onStart()
		if err != nil {
			return err
		}
	}

	b.started.Store(true)

	return nil
}

// Stop bypasses the unit.
func (b *Base) Stop() {
	b.started.Store(false)
}

// IsStarted reports whether the unit is engaged.
func (b *Base) IsStarted() bool {
	return b.started.Load()
}
