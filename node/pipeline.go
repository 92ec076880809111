package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Pipeline creates units asynchronously. Factories run on pipeline
// goroutines, never on the caller's, and at most a bounded number run at
// the same time.
type Pipeline struct {
	ctx unit.Context
	sem *semaphore.Weighted
	log *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPipeline creates a pipeline whose factories receive ctx.
func NewPipeline(ctx unit.Context, opts ...Option) *Pipeline {
	c := applyOptions(opts)

	return &Pipeline{
		ctx: ctx,
		sem: semaphore.NewWeighted(c.maxConcurrent),
		log: c.log,
	}
}

// Pending is the handle of one in-flight instantiation.
type Pending struct {
	done chan struct{}
	u    unit.Unit
	err  error
}

// Done is closed once the instantiation has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome, or ErrPending while the instantiation is
// still running.
func (p *Pending) Result() (unit.Unit, error) {
	select {
	case <-p.done:
		return p.u, p.err
	default:
		return nil, ErrPending
	}
}

// Wait blocks until the instantiation has finished or ctx is done.
func (p *Pending) Wait(ctx context.Context) (unit.Unit, error) {
	select {
	case <-p.done:
		return p.u, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Instantiate builds a unit for reg. The call returns immediately; then is
// invoked exactly once on the pipeline goroutine with either a unit or an
// error wrapping ErrInstantiationFailed. A closed pipeline starts nothing,
// never calls then and returns ErrClosed.
func (p *Pipeline) Instantiate(reg component.Registration, then func(unit.Unit, error)) (*Pending, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("node: instantiate %s: %w", reg.Description, ErrClosed)
	}

	p.wg.Add(1)
	p.mu.Unlock()

	pd := &Pending{done: make(chan struct{})}

	go func() {
		defer p.wg.Done()

		u, err := p.build(reg)
		if err != nil {
			p.log.Debug("instantiation failed",
				zap.Stringer("component", reg.Description),
				zap.Error(err))
		}

		pd.u, pd.err = u, err
		close(pd.done)

		if then != nil {
			then(u, err)
		}
	}()

	return pd, nil
}

// Wait blocks until every instantiation started so far has finished,
// continuations included.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close stops accepting instantiations and waits for the running ones.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pipeline) build(reg component.Registration) (u unit.Unit, err error) {
	// Acquire only fails on a done context.
	_ = p.sem.Acquire(context.Background(), 1)
	defer p.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			u = nil
			err = fmt.Errorf("%w: %s: factory panic: %v", ErrInstantiationFailed, reg.Description, r)
		}
	}()

	if reg.New == nil {
		return nil, fmt.Errorf("%w: %s: nil factory", ErrInstantiationFailed, reg.Description)
	}

	u, err = reg.New(p.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInstantiationFailed, reg.Description, err)
	}

	if u == nil {
		return nil, fmt.Errorf("%w: %s: factory returned no unit", ErrInstantiationFailed, reg.Description)
	}

	err = checkParameters(reg.Params, u.Parameters())
	if err != nil {
		release(u)
		return nil, fmt.Errorf("%w: %s: %w", ErrInstantiationFailed, reg.Description, err)
	}

	return u, nil
}

// checkParameters verifies that tree exposes every parameter of want at the
// same address.
func checkParameters(want *param.Table, tree *param.Tree) error {
	if tree == nil {
		return errors.New("unit has no parameter tree")
	}

	if want == nil {
		return nil
	}

	for _, d := range want.All() {
		got, ok := tree.Table().ByAddress(d.Address)
		if !ok || got.Name != d.Name {
			return fmt.Errorf("%w: unit does not expose %q at address %d", param.ErrUnknownParameter, d.Name, d.Address)
		}
	}

	return nil
}

// release stops u and frees its resources.
func release(u unit.Unit) {
	if u == nil {
		return
	}

	u.Stop()

	if c, ok := u.(io.Closer); ok {
		_ = c.Close()
	}
}
