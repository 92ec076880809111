package spectrum

import (
	"fmt"
	"math"
)

// Goertzel evaluates one DFT term incrementally. Power and Magnitude cover
// every sample processed since the last Reset.
type Goertzel struct {
	frequency float64
	coeff     float64
	s0, s1    float64
	n         int
}

// NewGoertzel creates an analyzer for frequency, which must lie in
// [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{
		frequency: frequency,
		coeff:     2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Frequency returns the target frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// Reset clears the accumulated state.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.n = 0, 0, 0
}

// ProcessBlock feeds samples into the analyzer.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1, c := g.s0, g.s1, g.coeff

	for _, x := range input {
		s0, s1 = x+c*s0-s1, s0
	}

	g.s0, g.s1 = s0, s1
	g.n += len(input)
}

// Power returns |X[k]|^2 of the samples processed so far.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X[k]|.
func (g *Goertzel) Magnitude() float64 {
	return math.Sqrt(max(g.Power(), 0))
}

// Amplitude returns the amplitude of a sine at the target frequency that
// explains the processed samples.
func (g *Goertzel) Amplitude() float64 {
	if g.n == 0 {
		return 0
	}

	return 2 * g.Magnitude() / float64(g.n)
}
