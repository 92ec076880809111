package node

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-fxhost/unit"
)

// State is the activation state of a node.
type State int

const (
	// Stopped means the unit is bypassed.
	Stopped State = iota
	// Started means the unit processes audio.
	Started
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Toggle tracks the requested activation state of a node and applies it to
// the unit once one is bound. Requests made before that are buffered; only
// the net result is applied.
type Toggle struct {
	mu        sync.Mutex
	requested State
	target    unit.Unit
}

// Start engages the bound unit, or records the request if none is bound.
// If the unit refuses to start the state stays Stopped and the error wraps
// ErrActivationFailed.
func (t *Toggle) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.target == nil {
		t.requested = Started
		return nil
	}

	if t.requested == Started && t.target.IsStarted() {
		return nil
	}

	return t.startLocked()
}

// Stop bypasses the bound unit, or records the request if none is bound.
func (t *Toggle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requested = Stopped

	if t.target != nil && t.target.IsStarted() {
		t.target.Stop()
	}
}

// State returns the current state, or the requested one while no unit is
// bound.
func (t *Toggle) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.requested
}

// Bind makes u the toggle's target and applies the buffered request.
func (t *Toggle) Bind(u unit.Unit) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.target = u

	if t.requested == Started {
		if u.IsStarted() {
			return nil
		}

		return t.startLocked()
	}

	if u.IsStarted() {
		u.Stop()
	}

	return nil
}

// Unbind drops the target and keeps the requested state for the next Bind.
func (t *Toggle) Unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.target = nil
}

func (t *Toggle) startLocked() error {
	err := t.target.Start()
	if err != nil {
		t.requested = Stopped
		return fmt.Errorf("%w: %w", ErrActivationFailed, err)
	}

	t.requested = Started

	return nil
}
