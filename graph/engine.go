package graph

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/unit"
)

var (
	// ErrIncompatibleFormat is returned when two vertices' signal formats cannot be connected.
	ErrIncompatibleFormat = errors.New("incompatible format")
	// ErrCycle is returned when a connection would close a loop.
	ErrCycle = errors.New("graph cycle")
	// ErrNotAttached is returned when an operation references a vertex that is not in the graph.
	ErrNotAttached = errors.New("vertex not attached")
	// ErrNilVertex is returned for nil vertex arguments.
	ErrNilVertex = errors.New("nil vertex")
	// ErrClosed is returned for mutations on a closed engine.
	ErrClosed = errors.New("engine closed")
)

// Processor renders one block in place. Implementations are called from the
// render context and must not block.
type Processor interface {
	Process(block []float64)
}

// Vertex is anything the engine can host: it has a stable id, a signal
// format and, when live, a processor. A nil Processor passes audio through.
type Vertex interface {
	VertexID() uint64
	Format() unit.Format
	Processor() Processor
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	render []core.RenderOption
	log    *zap.Logger
}

// WithFormat sets the engine's render format.
func WithFormat(f unit.Format) Option {
	return func(c *config) {
		c.render = append(c.render, core.WithSampleRate(f.SampleRate), core.WithChannels(f.Channels))
	}
}

// WithBlockSize sets the maximum block size passed to Process.
func WithBlockSize(n int) Option {
	return func(c *config) { c.render = append(c.render, core.WithBlockSize(n)) }
}

// WithLogger overrides the package logger for one engine.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.log = l }
}

// Engine is the host processing graph. All topology changes go through a
// single mutation point and are published as immutable snapshots; Process
// picks up the latest snapshot at the start of each pass.
type Engine struct {
	cfg core.RenderConfig
	log *zap.Logger

	mu      sync.Mutex
	closed  bool
	version uint64
	snap    atomic.Pointer[Snapshot]

	// render context only
	bufs          map[uint64][]float64
	mix           []float64
	renderVersion uint64
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = Logger()
	}

	e := &Engine{
		cfg:  core.ApplyRenderOptions(c.render...),
		log:  c.log,
		bufs: make(map[uint64][]float64),
	}
	e.snap.Store(emptySnapshot)

	return e
}

// Format returns the render format of the engine.
func (e *Engine) Format() unit.Format {
	return unit.Format{SampleRate: e.cfg.SampleRate, Channels: e.cfg.Channels}
}

// BlockSize returns the configured maximum block size.
func (e *Engine) BlockSize() int {
	return e.cfg.BlockSize
}

// Snapshot returns the currently published topology.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Apply runs fn against a copy of the current topology and publishes the
// result atomically. If fn returns an error nothing is published.
func (e *Engine) Apply(fn func(tx *Tx) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	tx := newTx(e.snap.Load(), e.checkFormat)

	err := fn(tx)
	if err != nil {
		return err
	}

	if !tx.changed {
		return nil
	}

	next, err := compile(e.version+1, tx.vertices, tx.up, tx.down)
	if err != nil {
		return fmt.Errorf("graph: compile: %w", err)
	}

	e.version++
	e.snap.Store(next)
	e.log.Debug("graph published",
		zap.Uint64("version", next.version),
		zap.Int("vertices", next.Len()),
		zap.Int("edges", len(next.down)))

	return nil
}

// Attach adds v to the graph. Attaching an attached vertex is a no-op.
func (e *Engine) Attach(v Vertex) error {
	return e.Apply(func(tx *Tx) error { return tx.Attach(v) })
}

// Detach removes v and its edges.
func (e *Engine) Detach(v Vertex) error {
	return e.Apply(func(tx *Tx) error {
		tx.Detach(v)
		return nil
	})
}

// Connect wires src -> dst, attaching missing endpoints in the same
// published snapshot.
func (e *Engine) Connect(src, dst Vertex) error {
	return e.Apply(func(tx *Tx) error { return tx.Connect(src, dst) })
}

// Disconnect removes the edge src -> dst.
func (e *Engine) Disconnect(src, dst Vertex) error {
	return e.Apply(func(tx *Tx) error { return tx.Disconnect(src, dst) })
}

// Close empties the graph and rejects further mutations.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true
	e.version++
	e.snap.Store(&Snapshot{
		version:  e.version,
		vertices: map[uint64]Vertex{},
		up:       map[uint64]uint64{},
		down:     map[uint64]uint64{},
	})

	return nil
}

func (e *Engine) checkFormat(v Vertex) error {
	if !v.Format().Compatible(e.Format()) {
		return fmt.Errorf("%w: vertex %d is %s, engine is %s", ErrIncompatibleFormat, v.VertexID(), v.Format(), e.Format())
	}

	return nil
}

// Process renders block in place through the current snapshot. Chain heads
// receive the input block; the outputs of all chain tails are summed into
// block. An empty graph leaves block untouched. Process must only be called
// from one goroutine at a time.
func (e *Engine) Process(block []float64) {
	if len(block) == 0 {
		return
	}

	s := e.snap.Load()
	if len(s.order) == 0 {
		return
	}

	if s.version != e.renderVersion {
		e.pruneBuffers(s)
		e.renderVersion = s.version
	}

	n := len(block)
	e.mix = core.EnsureLen(e.mix, n)
	core.Zero(e.mix)

	for _, v := range s.order {
		id := v.VertexID()

		buf := core.EnsureLen(e.bufs[id], n)
		e.bufs[id] = buf

		if src, ok := s.up[id]; ok {
			copy(buf, e.bufs[src][:n])
		} else {
			copy(buf, block)
		}

		if p := v.Processor(); p != nil {
			p.Process(buf)
		}

		if _, ok := s.down[id]; !ok {
			vecmath.AddBlockInPlace(e.mix, buf)
		}
	}

	copy(block, e.mix)
}

func (e *Engine) pruneBuffers(s *Snapshot) {
	for id := range e.bufs {
		if !s.Contains(id) {
			delete(e.bufs, id)
		}
	}
}
