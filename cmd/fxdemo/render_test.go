package main

import (
	"testing"

	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/internal/testutil"
)

func TestRendererEmptyGraphPassesTone(t *testing.T) {
	t.Parallel()

	engine := graph.New(graph.WithFormat(monoFormat(48000)), graph.WithBlockSize(100))
	r := newRenderer(engine, 1000, 0.5)

	in, out := r.render(1000)

	testutil.RequireSliceNearlyEqual(t, out, in, 0)
	testutil.RequireSliceNearlyEqual(t, in[:48], testutil.Sine(1000, 48000, 0.5, 48), 1e-12)
}

func TestPlayerReadEncodesFloat32(t *testing.T) {
	t.Parallel()

	engine := graph.New(graph.WithFormat(monoFormat(48000)))
	p := &player{r: newRenderer(engine, 12000, 1)}

	buf := make([]byte, 16)

	n, err := p.Read(buf)
	if err != nil || n != 16 {
		t.Fatalf("Read = %d, %v", n, err)
	}

	// Second sample of a quarter-rate sine is exactly 1.0f: 0x3f800000 LE.
	if buf[4] != 0x00 || buf[5] != 0x00 || buf[6] != 0x80 || buf[7] != 0x3f {
		t.Fatalf("sample 1 bytes = % x", buf[4:8])
	}
}

func TestPeak(t *testing.T) {
	t.Parallel()

	if got := peak([]float64{0.1, -0.7, 0.3}); got != 0.7 {
		t.Fatalf("peak = %v, want 0.7", got)
	}
}
