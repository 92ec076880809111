package node

import "errors"

var (
	// ErrInstantiationFailed is returned when a factory fails, panics or
	// returns an unusable unit. It wraps the underlying reason.
	ErrInstantiationFailed = errors.New("instantiation failed")
	// ErrActivationFailed is returned when a unit refuses to start.
	ErrActivationFailed = errors.New("activation failed")
	// ErrClosed is returned for operations on a closed node, host or
	// pipeline.
	ErrClosed = errors.New("closed")
	// ErrPending is returned by Pending.Result before the instantiation has
	// finished.
	ErrPending = errors.New("instantiation pending")
)
