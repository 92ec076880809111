package effects

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-fxhost/dsp/core"
)

// coefficients of one second-order section, a0 normalized to 1.
type coefficients struct {
	b0, b1, b2 float64
	a1, a2     float64
}

var passthrough = coefficients{b0: 1}

// section is a Direct Form II Transposed biquad.
type section struct {
	coefficients

	d0, d1 float64
}

func (s *section) processBlock(buf []float64) {
	c := s.coefficients
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := c.b0*x + d0
		d0 = c.b1*x - c.a1*y + d1
		d1 = c.b2*x - c.a2*y
		buf[i] = y
	}

	s.d0, s.d1 = core.FlushDenormals(d0), core.FlushDenormals(d1)
}

func (s *section) reset() {
	s.d0, s.d1 = 0, 0
}

// peaking designs an RBJ peaking filter. gain is linear amplitude at the
// center frequency; 1 is flat.
func peaking(freq, gain, q, sampleRate float64) coefficients {
	if sampleRate <= 0 || gain == 1 {
		return passthrough
	}

	freq = min(max(freq, 1), 0.49*sampleRate)
	q = max(q, minQ)
	gain = max(gain, minGain)

	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Sqrt(gain)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return coefficients{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// magnitude returns |H(e^jw)| at freq.
func (c coefficients) magnitude(freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1

	num := complex(c.b0, 0) + complex(c.b1, 0)*z1 + complex(c.b2, 0)*z2
	den := 1 + complex(c.a1, 0)*z1 + complex(c.a2, 0)*z2

	return cmplx.Abs(num / den)
}
