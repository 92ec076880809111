package spectrum

import (
	"testing"

	"github.com/cwbudde/algo-fxhost/internal/testutil"
)

func TestNewGoertzelValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		freq float64
		fs   float64
	}{
		{name: "zero sample rate", freq: 100, fs: 0},
		{name: "negative frequency", freq: -1, fs: 48000},
		{name: "above nyquist", freq: 30000, fs: 48000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewGoertzel(tc.freq, tc.fs); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGoertzelAmplitude(t *testing.T) {
	t.Parallel()

	const fs = 48000.0

	g, err := NewGoertzel(1000, fs)
	if err != nil {
		t.Fatalf("NewGoertzel: %v", err)
	}

	sig := testutil.Sine(1000, fs, 0.3, 4800)
	for _, block := range testutil.Blocks(sig, 512) {
		g.ProcessBlock(block)
	}

	testutil.RequireNearlyEqual(t, g.Amplitude(), 0.3, 1e-6)

	g.Reset()

	g.ProcessBlock(testutil.Sine(5000, fs, 0.3, 4800))

	if g.Amplitude() > 1e-6 {
		t.Fatalf("off-target amplitude = %v", g.Amplitude())
	}

	if g.Frequency() != 1000 {
		t.Fatalf("Frequency() = %v", g.Frequency())
	}
}
