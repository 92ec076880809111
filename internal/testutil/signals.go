// Package testutil provides deterministic signals, tolerance assertions and
// controllable processing units for tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns length samples of a sine at freqHz, starting at phase zero.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	w := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(w*float64(i))
	}

	return out
}

// Noise returns seeded white noise in [-amplitude, amplitude).
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}

	return out
}

// Impulse returns a unit impulse at pos. An out-of-range pos yields silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Blocks splits signal into consecutive blocks of size samples. The last
// block may be shorter. The blocks alias signal.
func Blocks(signal []float64, size int) [][]float64 {
	if size <= 0 {
		return nil
	}

	out := make([][]float64, 0, (len(signal)+size-1)/size)
	for start := 0; start < len(signal); start += size {
		out = append(out, signal[start:min(start+size, len(signal))])
	}

	return out
}
