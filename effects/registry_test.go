package effects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/internal/testutil"
	"github.com/cwbudde/algo-fxhost/node"
	"github.com/cwbudde/algo-fxhost/unit"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	reg, err := r.Resolve(component.Effect("peq0", "AuKt"))
	if err != nil {
		t.Fatalf("Resolve(peq0): %v", err)
	}

	if reg.Name != "Peaking Parametric Equalizer Filter" || reg.Params.Len() != 3 {
		t.Fatalf("unexpected registration %q with %d params", reg.Name, reg.Params.Len())
	}

	if _, err := r.Resolve(component.Effect("dist", "AuKt")); !errors.Is(err, component.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got: %v", err)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	t.Parallel()

	r := component.NewRegistry()

	if err := Register(r); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	if err := Register(r); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	foreign := component.Registration{
		Description: PeakingEQDescription,
		Params:      peqParams,
		New: func(unit.Context) (unit.Unit, error) {
			return nil, errors.New("unused")
		},
	}

	if err := r.Register(foreign); !errors.Is(err, component.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got: %v", err)
	}
}

func TestRegisterRejectsDifferentReverbConfig(t *testing.T) {
	t.Parallel()

	r := component.NewRegistry()

	if err := Register(r, WithReverbFeedbackLimit(0.5)); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	if err := Register(r, WithReverbFeedbackLimit(0.5)); err != nil {
		t.Fatalf("Register with equal options: %v", err)
	}

	err := Register(r, WithReverbFeedbackLimit(0.9))
	if !errors.Is(err, component.ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got: %v", err)
	}

	reg, _ := r.Resolve(CostelloReverbDescription)

	u, err := reg.New(unit.Context{SampleRate: 48000, BlockSize: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if limit := u.(*CostelloReverb).FeedbackLimit(); limit != 0.5 {
		t.Fatalf("FeedbackLimit() = %v, want the first configuration's 0.5", limit)
	}
}

func TestFactoriesRejectInvalidSampleRate(t *testing.T) {
	t.Parallel()

	for _, reg := range Registrations() {
		if _, err := reg.New(unit.Context{}); err == nil {
			t.Fatalf("%s: expected error for zero sample rate", reg.Name)
		}
	}
}

func newHost(t *testing.T) (*node.Host, *graph.Engine) {
	t.Helper()

	engine := graph.New(graph.WithBlockSize(256))
	host := node.NewHost(DefaultRegistry(), engine)

	t.Cleanup(func() {
		_ = host.Close()
		_ = engine.Close()
	})

	return host, engine
}

func wait(t *testing.T, n *node.Node) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.Wait(ctx); err != nil {
		t.Fatalf("node %s: %v", n.Name(), err)
	}
}

func TestPeakingEQNodeAppliesInitialGain(t *testing.T) {
	t.Parallel()

	host, engine := newHost(t)

	eq, err := host.NewNode(PeakingEQDescription, node.WithValue("gain", 2.5), node.WithStarted(true))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	if v, _ := eq.Get("gain"); v != 2.5 {
		t.Fatalf("Get(gain) = %v, want 2.5", v)
	}

	wait(t, eq)

	if s := eq.Stats(); s.Forwarded != 1 {
		t.Fatalf("Forwarded = %d, want exactly one write", s.Forwarded)
	}

	sig := testutil.Sine(1000, 48000, 0.1, 9600)
	for _, block := range testutil.Blocks(sig, 256) {
		engine.Process(block)
	}

	ratio := maxAbs(sig[4800:]) / 0.1
	testutil.RequireNearlyEqual(t, ratio, 2.5, 0.05)
}

func TestReverbNodeMirrorsClampedFeedback(t *testing.T) {
	t.Parallel()

	host, engine := newHost(t)

	rv, err := host.NewNode(CostelloReverbDescription, node.WithStarted(true))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	wait(t, rv)

	if err := rv.Set("feedback", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v, _ := rv.Get("feedback"); v != defaultFeedbackLimit {
		t.Fatalf("mirror feedback = %v, want %v", v, defaultFeedbackLimit)
	}

	engine.Process(make([]float64, 256))

	if v, _ := rv.Get("feedback"); v != defaultFeedbackLimit {
		t.Fatalf("mirror feedback = %v, want %v", v, defaultFeedbackLimit)
	}

	if s := rv.Stats(); s.External != 1 {
		t.Fatalf("External = %d, want 1", s.External)
	}
}
