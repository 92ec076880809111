package node

import (
	"fmt"
	"sync"
	"weak"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Host creates effect nodes from a component registry and places them in
// an engine.
type Host struct {
	registry *component.Registry
	engine   *graph.Engine
	pipeline *Pipeline
	dispatch Dispatcher
	serial   *SerialDispatcher // owned, nil when injected
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
	nodes  map[ID]weak.Pointer[Node]
}

// NewHost creates a host. Factories receive the engine's sample rate and
// block size.
func NewHost(registry *component.Registry, engine *graph.Engine, opts ...Option) *Host {
	c := applyOptions(opts)

	h := &Host{
		registry: registry,
		engine:   engine,
		dispatch: c.dispatch,
		log:      c.log,
		nodes:    make(map[ID]weak.Pointer[Node]),
	}

	if h.dispatch == nil {
		h.serial = NewSerialDispatcher()
		h.dispatch = h.serial
	}

	ctx := unit.Context{
		SampleRate: engine.Format().SampleRate,
		BlockSize:  engine.BlockSize(),
	}
	h.pipeline = NewPipeline(ctx, opts...)

	return h
}

// Engine returns the host's engine.
func (h *Host) Engine() *graph.Engine {
	return h.engine
}

// Registry returns the host's component registry.
func (h *Host) Registry() *component.Registry {
	return h.registry
}

// Pipeline returns the host's instantiation pipeline.
func (h *Host) Pipeline() *Pipeline {
	return h.pipeline
}

// NewNode creates a node for desc and starts instantiating its unit. The
// node is returned immediately; lookup and option errors are reported
// synchronously, instantiation errors through Node.Err.
func (h *Host) NewNode(desc component.Description, opts ...NodeOption) (*Node, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	reg, err := h.registry.Resolve(desc)
	if err != nil {
		return nil, fmt.Errorf("node: new node: %w", err)
	}

	format := reg.Format(h.engine.Format().SampleRate)
	if !format.Compatible(h.engine.Format()) {
		return nil, fmt.Errorf("node: new node: %w: %s is %s, engine is %s",
			graph.ErrIncompatibleFormat, desc, format, h.engine.Format())
	}

	var nc nodeConfig
	for _, opt := range opts {
		opt(&nc)
	}

	if nc.input != nil && !nc.input.Format().Compatible(format) {
		return nil, fmt.Errorf("node: new node: %w: input is %s, %s is %s",
			graph.ErrIncompatibleFormat, nc.input.Format(), desc, format)
	}

	n := &Node{
		id:      nextID(),
		host:    h,
		reg:     reg,
		format:  format,
		binding: NewBinding(reg.Params, h.dispatch),
		ready:   make(chan struct{}),
		input:   nc.input,
	}

	for _, v := range nc.values {
		err := n.binding.Set(v.name, v.value)
		if err != nil {
			return nil, fmt.Errorf("node: new node: %w", err)
		}
	}

	if nc.started {
		// No unit is bound yet, so Start only records the request.
		_ = n.toggle.Start()
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}

	h.nodes[n.id] = weak.Make(n)
	h.mu.Unlock()

	n.instantiate()

	return n, nil
}

// Nodes returns the number of nodes that are neither closed nor collected.
func (h *Host) Nodes() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0

	for _, wp := range h.nodes {
		if wp.Value() != nil {
			count++
		}
	}

	return count
}

// Close closes every node, closes the pipeline once in-flight
// instantiations have finished and stops the host's own dispatcher. The
// engine is left running.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}

	h.closed = true

	live := make([]*Node, 0, len(h.nodes))
	for _, wp := range h.nodes {
		if n := wp.Value(); n != nil {
			live = append(live, n)
		}
	}
	h.mu.Unlock()

	var firstErr error

	for _, n := range live {
		err := n.Close()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	h.pipeline.Close()

	if h.serial != nil {
		h.serial.Close()
	}

	return firstErr
}

func (h *Host) forget(id ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.nodes, id)
}

// discard releases a unit whose node no longer wants it.
func (h *Host) discard(desc component.Description, u unit.Unit) {
	if u == nil {
		return
	}

	h.log.Info("discarding late unit", zap.Stringer("component", desc))
	release(u)
}
