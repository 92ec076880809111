package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidSize is returned for analyzer sizes that are not a power of two
// of at least 2.
var ErrInvalidSize = errors.New("spectrum: invalid analyzer size")

// Analyzer computes amplitude spectra of fixed-size frames. Magnitudes are
// scaled so a bin-centered sine of amplitude A reads A in its bin.
//
// An Analyzer is not safe for concurrent use.
type Analyzer struct {
	size   int
	plan   *algofft.Plan[complex128]
	window []float64
	scale  float64

	frame []float64
	bins  []complex128
	re    []float64
	im    []float64
	mags  []float64
}

// NewAnalyzer creates an analyzer for frames of size samples.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: plan: %w", err)
	}

	half := size/2 + 1
	a := &Analyzer{
		size:   size,
		plan:   plan,
		window: make([]float64, size),
		frame:  make([]float64, size),
		bins:   make([]complex128, size),
		re:     make([]float64, half),
		im:     make([]float64, half),
		mags:   make([]float64, half),
	}

	sum := 0.0
	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
		sum += a.window[i]
	}

	a.scale = 2 / sum

	return a, nil
}

// Size returns the frame size.
func (a *Analyzer) Size() int {
	return a.size
}

// Analyze returns size/2+1 bin magnitudes of the last size samples of
// block. Shorter blocks are zero-padded. The returned slice is reused by
// the next call.
func (a *Analyzer) Analyze(block []float64) ([]float64, error) {
	clear(a.frame)

	if len(block) > a.size {
		block = block[len(block)-a.size:]
	}

	copy(a.frame, block)
	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, x := range a.frame {
		a.bins[i] = complex(x, 0)
	}

	err := a.plan.Forward(a.bins, a.bins)
	if err != nil {
		return nil, fmt.Errorf("spectrum: forward: %w", err)
	}

	for i := range a.mags {
		a.re[i] = real(a.bins[i])
		a.im[i] = imag(a.bins[i])
	}

	vecmath.Magnitude(a.mags, a.re, a.im)
	vecmath.ScaleBlock(a.mags, a.mags, a.scale)

	return a.mags, nil
}

// Dominant returns the frequency of the strongest non-DC bin of block and
// its magnitude.
func (a *Analyzer) Dominant(block []float64, sampleRate float64) (freq, magnitude float64, err error) {
	mags, err := a.Analyze(block)
	if err != nil {
		return 0, 0, err
	}

	bin := PeakBin(mags)

	return BinFrequency(bin, a.size, sampleRate), mags[bin], nil
}

// PeakBin returns the index of the largest magnitude, ignoring the DC bin
// when there is any other.
func PeakBin(mags []float64) int {
	if len(mags) < 2 {
		return 0
	}

	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}

	return best
}

// BinFrequency returns the center frequency of bin for an FFT of size
// samples at sampleRate.
func BinFrequency(bin, size int, sampleRate float64) float64 {
	if size <= 0 {
		return 0
	}

	return float64(bin) * sampleRate / float64(size)
}
