package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/internal/testutil"
	"github.com/cwbudde/algo-fxhost/param"
)

func TestPeakingDesign(t *testing.T) {
	t.Parallel()

	const fs = 48000.0

	t.Run("unity gain is flat", func(t *testing.T) {
		t.Parallel()

		if c := peaking(1000, 1, 0.707, fs); c != passthrough {
			t.Fatalf("coefficients = %+v, want passthrough", c)
		}
	})

	t.Run("center gain equals linear gain", func(t *testing.T) {
		t.Parallel()

		for _, g := range []float64{0.25, 2, 4, 10} {
			c := peaking(1000, g, 0.707, fs)
			testutil.RequireNearlyEqual(t, c.magnitude(1000, fs), g, 1e-9)
		}
	})

	t.Run("far from center is flat", func(t *testing.T) {
		t.Parallel()

		c := peaking(4000, 4, 2, fs)
		testutil.RequireNearlyEqual(t, c.magnitude(40, fs), 1, 0.01)
	})

	t.Run("degenerate parameters stay finite", func(t *testing.T) {
		t.Parallel()

		c := peaking(30000, 0, 0, fs)
		testutil.RequireFinite(t, []float64{c.b0, c.b1, c.b2, c.a1, c.a2})
	})
}

func TestPeakingEQProcess(t *testing.T) {
	t.Parallel()

	const fs = 48000.0

	eq := NewPeakingEQ(fs)

	t.Run("defaults pass audio unchanged", func(t *testing.T) {
		in := testutil.Noise(1, 0.5, 256)
		out := append([]float64(nil), in...)
		eq.Process(out)

		testutil.RequireSliceNearlyEqual(t, out, in, 1e-12)
	})

	t.Run("boost at center frequency", func(t *testing.T) {
		if err := eq.Parameters().SetValue(PEQGain, 4, param.HostOriginator); err != nil {
			t.Fatalf("SetValue: %v", err)
		}

		sig := testutil.Sine(1000, fs, 0.1, 9600)
		for _, block := range testutil.Blocks(sig, 512) {
			eq.Process(block)
		}

		got := core.RMS(sig[4800:])
		want := 4 * 0.1 / math.Sqrt2
		testutil.RequireNearlyEqual(t, got, want, 0.01*want)
	})
}
