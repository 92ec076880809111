package node

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/param"
)

// Change describes a parameter value that changed on the render side.
type Change struct {
	Name    string
	Address uint64
	Value   float64
}

// BindingStats counts traffic through a binding.
type BindingStats struct {
	// Forwarded is the number of values written to the render-side tree.
	Forwarded uint64
	// Confirmations is the number of echoes of the binding's own writes.
	Confirmations uint64
	// External is the number of foreign writes that changed the mirror.
	External uint64
}

type subscriber struct {
	id int
	fn func(Change)
}

// Binding synchronizes a control-side mirror of a unit's parameters with
// its render-side tree.
//
// The mirror always holds the last value written by either side. Writes
// made before a tree is bound are queued, coalesced per parameter, and
// flushed on Bind. Writes coming back from the tree are told apart from
// the binding's own writes by their originator tag.
//
// The tree's observers run on the writer's goroutine. The binding's observer
// takes a short lock and hands change events to the dispatcher, so a
// render-side writer pays for both.
type Binding struct {
	table    *param.Table
	origin   param.Originator
	dispatch Dispatcher

	// writeMu orders forwards to the tree. It is never held while waiting
	// for mu's holder to finish a tree call.
	writeMu sync.Mutex

	mu      sync.Mutex
	mirror  map[string]float64
	queued  []string
	tree    *param.Tree
	token   param.Token
	gen     uint64
	closed  bool
	subs    []subscriber
	nextSub int

	forwarded     atomic.Uint64
	confirmations atomic.Uint64
	external      atomic.Uint64
}

// NewBinding creates an unbound binding whose mirror holds the table
// defaults. Change events are delivered through d.
func NewBinding(table *param.Table, d Dispatcher) *Binding {
	if d == nil {
		d = Inline
	}

	return &Binding{
		table:    table,
		origin:   param.NewOriginator(),
		dispatch: d,
		mirror:   table.Defaults(),
	}
}

// Originator returns the tag the binding stamps on its writes.
func (b *Binding) Originator() param.Originator {
	return b.origin
}

// Set writes value to the named parameter. The value is clamped to the
// parameter's range. Setting the value the mirror already holds is a no-op
// while bound.
func (b *Binding) Set(name string, value float64) error {
	d, err := b.table.Lookup(name)
	if err != nil {
		return err
	}

	if !core.IsFinite(value) {
		return fmt.Errorf("%w: %s = %v", param.ErrInvalidValue, name, value)
	}

	value = d.Clamp(value)

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()

	if b.tree == nil {
		b.mirror[name] = value
		if !slices.Contains(b.queued, name) {
			b.queued = append(b.queued, name)
		}
		b.mu.Unlock()

		return nil
	}

	if b.mirror[name] == value {
		b.mu.Unlock()
		return nil
	}

	b.mirror[name] = value
	tree := b.tree
	b.mu.Unlock()

	err = tree.SetValue(d.Address, value, b.origin)
	if err != nil {
		return fmt.Errorf("node: set %s: %w", name, err)
	}

	b.forwarded.Add(1)

	return nil
}

// Get returns the mirrored value of the named parameter.
func (b *Binding) Get(name string) (float64, error) {
	_, err := b.table.Lookup(name)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mirror[name], nil
}

// Values returns a copy of the mirror.
func (b *Binding) Values() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return maps.Clone(b.mirror)
}

// Queued returns the names of parameters waiting for a tree, in the order
// they were first written.
func (b *Binding) Queued() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.queued)
}

// Bound reports whether a tree is bound.
func (b *Binding) Bound() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.tree != nil
}

// Stats returns the traffic counters.
func (b *Binding) Stats() BindingStats {
	return BindingStats{
		Forwarded:     b.forwarded.Load(),
		Confirmations: b.confirmations.Load(),
		External:      b.external.Load(),
	}
}

// OnChange subscribes fn to render-side changes. The returned function
// cancels the subscription.
func (b *Binding) OnChange(fn func(Change)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	id := b.nextSub
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.subs = slices.DeleteFunc(b.subs, func(s subscriber) bool { return s.id == id })
	}
}

type push struct {
	address uint64
	value   float64
}

// Bind attaches the binding to tree. Queued writes are flushed in order,
// then every mirror value that differs from the tree is pushed, so values
// set on the control side survive a change of unit.
func (b *Binding) Bind(tree *param.Tree) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}

	if b.tree != nil {
		b.tree.RemoveObserver(b.token)
	}

	b.gen++
	b.tree = tree
	b.token = tree.Observe(b.observer(b.gen))

	pushes := make([]push, 0, len(b.queued))
	seen := make(map[string]bool, len(b.queued))

	for _, name := range b.queued {
		d, err := b.table.Lookup(name)
		if err != nil {
			continue
		}

		seen[name] = true
		if p, ok := b.diff(tree, d); ok {
			pushes = append(pushes, p)
		}
	}

	for _, d := range b.table.All() {
		if seen[d.Name] {
			continue
		}

		if p, ok := b.diff(tree, d); ok {
			pushes = append(pushes, p)
		}
	}

	b.queued = nil
	b.mu.Unlock()

	for _, p := range pushes {
		err := tree.SetValue(p.address, p.value, b.origin)
		if err != nil {
			return fmt.Errorf("node: bind: %w", err)
		}

		b.forwarded.Add(1)
	}

	return nil
}

// diff returns the push needed to bring tree in line with the mirror for d.
// Called with mu held.
func (b *Binding) diff(tree *param.Tree, d param.Descriptor) (push, bool) {
	want := b.mirror[d.Name]

	cur, ok := tree.Value(d.Address)
	if ok && cur == want {
		return push{}, false
	}

	return push{address: d.Address, value: want}, true
}

// Unbind detaches the binding from its tree. Later writes are queued again.
func (b *Binding) Unbind() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.unbindLocked()
}

// Close unbinds and drops all subscribers. A closed binding keeps serving
// its mirror but can no longer be bound.
func (b *Binding) Close() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.unbindLocked()
	b.closed = true
	b.subs = nil
}

func (b *Binding) unbindLocked() {
	if b.tree == nil {
		return
	}

	b.tree.RemoveObserver(b.token)
	b.tree = nil
	b.token = 0
	b.gen++
}

// observer mirrors the tree's current value rather than the notified one.
// A tree stores before it notifies, so a notification can arrive after a
// newer write; reading the store under mu keeps the last writer's value.
func (b *Binding) observer(gen uint64) param.Observer {
	return func(addr uint64, _ float64, origin param.Originator) {
		b.mu.Lock()

		if b.gen != gen || b.tree == nil {
			b.mu.Unlock()
			return
		}

		own := origin == b.origin
		if own {
			b.confirmations.Add(1)
		}

		d, ok := b.table.ByAddress(addr)
		if !ok {
			b.mu.Unlock()
			return
		}

		value, _ := b.tree.Value(addr)
		if b.mirror[d.Name] == value {
			b.mu.Unlock()
			return
		}

		b.mirror[d.Name] = value
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		if !own {
			b.external.Add(1)
		}

		ev := Change{Name: d.Name, Address: addr, Value: value}
		for _, s := range subs {
			fn := s.fn
			b.dispatch.Dispatch(func() { fn(ev) })
		}
	}
}
