package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// ID identifies a node for the lifetime of the process. IDs are never
// reused.
type ID uint64

var lastID atomic.Uint64

func nextID() ID {
	return ID(lastID.Add(1))
}

// Status is the instantiation status of a node.
type Status int

const (
	// StatusPending means the unit is being created.
	StatusPending Status = iota
	// StatusReady means the unit exists and the node is in the graph.
	StatusReady
	// StatusFailed means instantiation failed; the node is a control-only
	// object.
	StatusFailed
	// StatusClosed means the node has been closed.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

type liveUnit struct {
	u unit.Unit
}

// Node is an effect node: one processing unit wrapped with a parameter
// mirror, an activation toggle and a place in the host graph.
//
// All methods are safe for concurrent use. Node implements graph.Vertex.
type Node struct {
	id      ID
	host    *Host
	reg     component.Registration
	format  unit.Format
	binding *Binding
	toggle  Toggle

	// lifecycle serializes instantiation completion, Reinstantiate and Close.
	lifecycle sync.Mutex

	mu            sync.Mutex
	status        Status
	err           error
	activationErr error
	u             unit.Unit
	gen           uint64
	ready         chan struct{}
	readyClosed   bool
	input         graph.Vertex

	live atomic.Pointer[liveUnit]
}

// ID returns the node's identity.
func (n *Node) ID() ID {
	return n.id
}

// Description returns the component the node was created from.
func (n *Node) Description() component.Description {
	return n.reg.Description
}

// Name returns the component's display name.
func (n *Node) Name() string {
	return n.reg.Name
}

// Status returns the instantiation status.
func (n *Node) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.status
}

// Err returns the instantiation error of a failed node.
func (n *Node) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.err
}

// ActivationErr returns the error of a start request that was buffered
// and failed when the unit was bound.
func (n *Node) ActivationErr() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.activationErr
}

// Done is closed when the current instantiation has finished, or the node
// was closed.
func (n *Node) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.ready
}

// Wait blocks until the current instantiation has finished and returns its
// error.
func (n *Node) Wait(ctx context.Context) error {
	select {
	case <-n.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status == StatusClosed {
		return ErrClosed
	}

	return n.err
}

// Set writes a parameter value. It never blocks on instantiation.
func (n *Node) Set(name string, value float64) error {
	return n.binding.Set(name, value)
}

// Get returns the mirrored value of a parameter.
func (n *Node) Get(name string) (float64, error) {
	return n.binding.Get(name)
}

// Values returns every mirrored parameter value.
func (n *Node) Values() map[string]float64 {
	return n.binding.Values()
}

// Descriptors returns the node's parameter descriptors in address order.
func (n *Node) Descriptors() []param.Descriptor {
	return n.reg.Params.All()
}

// OnChange subscribes fn to parameter changes made on the render side.
// Callbacks run on the host's dispatcher.
func (n *Node) OnChange(fn func(Change)) func() {
	return n.binding.OnChange(fn)
}

// Stats returns the node's parameter traffic counters.
func (n *Node) Stats() BindingStats {
	return n.binding.Stats()
}

// Start engages the node. Before the unit exists the request is recorded
// and applied once it does.
func (n *Node) Start() error {
	return n.toggle.Start()
}

// Stop bypasses the node.
func (n *Node) Stop() {
	n.toggle.Stop()
}

// State returns the activation state.
func (n *Node) State() State {
	return n.toggle.State()
}

// IsStarted reports whether the node is (or is requested to be) started.
func (n *Node) IsStarted() bool {
	return n.toggle.State() == Started
}

// VertexID implements graph.Vertex.
func (n *Node) VertexID() uint64 {
	return uint64(n.id)
}

// Format implements graph.Vertex.
func (n *Node) Format() unit.Format {
	return n.format
}

// Processor implements graph.Vertex. It returns nil, so audio passes
// through, unless a started unit is bound.
func (n *Node) Processor() graph.Processor {
	l := n.live.Load()
	if l == nil || !l.u.IsStarted() {
		return nil
	}

	return l.u
}

// Reinstantiate replaces the node's unit with a fresh instance. Parameter
// values and the activation state carry over; the node stays in the graph
// and passes audio through until the new unit is ready. If the new unit
// fails, the node is removed from the graph like any failed node.
func (n *Node) Reinstantiate() error {
	n.lifecycle.Lock()
	defer n.lifecycle.Unlock()

	n.mu.Lock()
	if n.status == StatusClosed {
		n.mu.Unlock()
		return ErrClosed
	}

	old := n.u
	n.u = nil
	n.mu.Unlock()

	n.live.Store(nil)
	n.binding.Unbind()
	n.toggle.Unbind()
	release(old)

	n.instantiate()

	return nil
}

// Close detaches the node from the graph and releases its unit. An
// instantiation still in flight is not cancelled; its unit is discarded
// when it arrives.
func (n *Node) Close() error {
	n.lifecycle.Lock()
	defer n.lifecycle.Unlock()

	n.mu.Lock()
	if n.status == StatusClosed {
		n.mu.Unlock()
		return nil
	}

	n.status = StatusClosed
	old := n.u
	n.u = nil
	n.input = nil
	n.closeReadyLocked()
	n.mu.Unlock()

	n.live.Store(nil)
	n.binding.Close()
	n.toggle.Unbind()

	err := n.host.engine.Detach(n)
	if errors.Is(err, graph.ErrClosed) {
		err = nil
	}

	release(old)
	n.host.forget(n.id)

	if err != nil {
		return fmt.Errorf("node: close: %w", err)
	}

	return nil
}

// instantiate starts a new instantiation. The continuation only holds a
// weak reference so a pending instantiation does not keep an abandoned
// node alive. A closed node stays closed.
func (n *Node) instantiate() {
	n.mu.Lock()
	if n.status == StatusClosed {
		n.mu.Unlock()
		return
	}

	n.gen++
	gen := n.gen
	n.status = StatusPending
	n.err = nil
	n.activationErr = nil

	if n.readyClosed {
		n.ready = make(chan struct{})
		n.readyClosed = false
	}
	n.mu.Unlock()

	wp := weak.Make(n)
	h := n.host
	desc := n.reg.Description

	_, err := h.pipeline.Instantiate(n.reg, func(u unit.Unit, err error) {
		nd := wp.Value()
		if nd == nil {
			h.discard(desc, u)
			return
		}

		nd.complete(gen, u, err)
	})
	if err == nil {
		return
	}

	n.mu.Lock()
	failed := n.status == StatusPending && n.gen == gen
	if failed {
		n.status = StatusFailed
		n.err = err
		n.closeReadyLocked()
	}
	n.mu.Unlock()

	if failed {
		n.detach()
	}
}

func (n *Node) complete(gen uint64, u unit.Unit, err error) {
	n.lifecycle.Lock()
	defer n.lifecycle.Unlock()

	n.mu.Lock()
	if n.status == StatusClosed || gen != n.gen {
		n.mu.Unlock()
		n.host.discard(n.reg.Description, u)

		return
	}

	if err != nil {
		n.status = StatusFailed
		n.err = err
		n.closeReadyLocked()
		n.mu.Unlock()

		n.detach()

		n.host.log.Warn("node instantiation failed",
			zap.Uint64("node", uint64(n.id)),
			zap.Stringer("component", n.reg.Description),
			zap.Error(err))

		return
	}

	n.u = u
	input := n.input
	n.mu.Unlock()

	var actErr error

	err = n.binding.Bind(u.Parameters())
	if err == nil {
		actErr = n.toggle.Bind(u)
		n.live.Store(&liveUnit{u: u})

		graphErr := n.host.engine.Apply(func(tx *graph.Tx) error {
			err := tx.Attach(n)
			if err != nil {
				return err
			}

			if input != nil {
				return tx.Connect(input, n)
			}

			return nil
		})
		if graphErr != nil {
			err = fmt.Errorf("node: attach: %w", graphErr)
		}
	}

	if err != nil {
		n.live.Store(nil)
		n.toggle.Unbind()
		n.binding.Unbind()
		release(u)
		n.detach()

		n.host.log.Warn("node attach failed",
			zap.Uint64("node", uint64(n.id)),
			zap.Error(err))
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.activationErr = actErr

	if err != nil {
		n.status = StatusFailed
		n.err = err
		n.u = nil
	} else {
		n.status = StatusReady
		n.input = nil
	}

	if actErr != nil {
		n.host.log.Warn("deferred activation failed",
			zap.Uint64("node", uint64(n.id)),
			zap.Error(actErr))
	}

	n.closeReadyLocked()
}

// detach removes a failed node from the graph. A node whose first
// instantiation failed was never attached, which makes this a no-op.
func (n *Node) detach() {
	err := n.host.engine.Detach(n)
	if err != nil && !errors.Is(err, graph.ErrClosed) {
		n.host.log.Warn("detaching failed node",
			zap.Uint64("node", uint64(n.id)),
			zap.Error(err))
	}
}

func (n *Node) closeReadyLocked() {
	if !n.readyClosed {
		close(n.ready)
		n.readyClosed = true
	}
}
