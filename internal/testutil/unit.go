package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// ErrFactory is returned by a failing Factory unless another error is set.
var ErrFactory = errors.New("test factory failure")

// Write records one value written to a unit's parameter tree.
type Write struct {
	Address uint64
	Value   float64
	Origin  param.Originator
}

// Unit is a processing unit for tests. Process scales the block by the
// value of a parameter named "gain" when the table has one. Every tree
// write and every start attempt is recorded.
type Unit struct {
	*unit.Base

	gainAddr uint64
	hasGain  bool
	startErr error

	starts    atomic.Int32
	processed atomic.Int64
	closed    atomic.Bool

	mu     sync.Mutex
	writes []Write
}

// UnitOption configures a test Unit.
type UnitOption func(*Unit)

// WithStartError makes every Start fail with err.
func WithStartError(err error) UnitOption {
	return func(u *Unit) { u.startErr = err }
}

// NewUnit creates a stopped test unit over table.
func NewUnit(table *param.Table, format unit.Format, opts ...UnitOption) *Unit {
	u := &Unit{Base: unit.NewBase(table, format)}
	for _, opt := range opts {
		opt(u)
	}

	if d, err := table.Lookup("gain"); err == nil {
		u.gainAddr, u.hasGain = d.Address, true
	}

	u.OnStart(func() error {
		u.starts.Add(1)
		return u.startErr
	})

	u.Parameters().Observe(func(addr uint64, value float64, origin param.Originator) {
		u.mu.Lock()
		u.writes = append(u.writes, Write{Address: addr, Value: value, Origin: origin})
		u.mu.Unlock()
	})

	return u
}

// Process implements unit.Unit.
func (u *Unit) Process(block []float64) {
	u.processed.Add(1)

	if !u.hasGain {
		return
	}

	g, _ := u.Parameters().Value(u.gainAddr)
	for i := range block {
		block[i] *= g
	}
}

// Close implements io.Closer.
func (u *Unit) Close() error {
	u.closed.Store(true)
	return nil
}

// Starts returns the number of start attempts.
func (u *Unit) Starts() int {
	return int(u.starts.Load())
}

// Processed returns the number of blocks processed.
func (u *Unit) Processed() int64 {
	return u.processed.Load()
}

// Closed reports whether Close was called.
func (u *Unit) Closed() bool {
	return u.closed.Load()
}

// Writes returns every tree write so far.
func (u *Unit) Writes() []Write {
	u.mu.Lock()
	defer u.mu.Unlock()

	return append([]Write(nil), u.writes...)
}

// WritesTo returns the tree writes to addr.
func (u *Unit) WritesTo(addr uint64) []Write {
	var out []Write

	for _, w := range u.Writes() {
		if w.Address == addr {
			out = append(out, w)
		}
	}

	return out
}

// Factory builds test units. A gated factory blocks every call until
// Release.
type Factory struct {
	table    *param.Table
	channels int
	err      error
	panicMsg string
	unitOpts []UnitOption

	gate     chan struct{}
	gateOnce sync.Once

	calls atomic.Int32
	mu    sync.Mutex
	units []*Unit
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// Gated makes calls block until Release.
func Gated() FactoryOption {
	return func(f *Factory) { f.gate = make(chan struct{}) }
}

// Failing makes every call return err, or ErrFactory when err is nil.
func Failing(err error) FactoryOption {
	return func(f *Factory) {
		if err == nil {
			err = ErrFactory
		}

		f.err = err
	}
}

// Panicking makes every call panic with msg.
func Panicking(msg string) FactoryOption {
	return func(f *Factory) { f.panicMsg = msg }
}

// Channels sets the channel count of produced units.
func Channels(n int) FactoryOption {
	return func(f *Factory) { f.channels = n }
}

// UnitOptions passes opts to every produced unit.
func UnitOptions(opts ...UnitOption) FactoryOption {
	return func(f *Factory) { f.unitOpts = append(f.unitOpts, opts...) }
}

// NewFactory creates a factory producing units over table.
func NewFactory(table *param.Table, opts ...FactoryOption) *Factory {
	f := &Factory{table: table, channels: 1}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// New is the component factory function.
func (f *Factory) New(ctx unit.Context) (unit.Unit, error) {
	f.calls.Add(1)

	if f.gate != nil {
		<-f.gate
	}

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}

	if f.err != nil {
		return nil, f.err
	}

	u := NewUnit(f.table, unit.Format{SampleRate: ctx.SampleRate, Channels: f.channels}, f.unitOpts...)

	f.mu.Lock()
	f.units = append(f.units, u)
	f.mu.Unlock()

	return u, nil
}

// Release opens the gate of a gated factory.
func (f *Factory) Release() {
	if f.gate == nil {
		return
	}

	f.gateOnce.Do(func() { close(f.gate) })
}

// Calls returns how often New was called.
func (f *Factory) Calls() int {
	return int(f.calls.Load())
}

// Units returns the units produced so far.
func (f *Factory) Units() []*Unit {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*Unit(nil), f.units...)
}

// Last returns the most recently produced unit, or nil.
func (f *Factory) Last() *Unit {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.units) == 0 {
		return nil
	}

	return f.units[len(f.units)-1]
}
