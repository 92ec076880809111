package main

import (
	"math"

	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/unit"
)

func monoFormat(sampleRate float64) unit.Format {
	return unit.Format{SampleRate: sampleRate, Channels: 1}
}

// renderer pulls a sine through the engine block by block.
type renderer struct {
	engine *graph.Engine
	block  int

	phase, step, amplitude float64

	buf []float64
}

func newRenderer(engine *graph.Engine, freq, amplitude float64) *renderer {
	return &renderer{
		engine:    engine,
		block:     engine.BlockSize(),
		step:      2 * math.Pi * freq / engine.Format().SampleRate,
		amplitude: amplitude,
	}
}

// fill writes the next len(dst) samples of the tone to dst.
func (r *renderer) fill(dst []float64) {
	for i := range dst {
		dst[i] = r.amplitude * math.Sin(r.phase)

		r.phase += r.step
		if r.phase >= 2*math.Pi {
			r.phase -= 2 * math.Pi
		}
	}
}

// next renders n processed samples. The result is reused by the next call.
func (r *renderer) next(n int) []float64 {
	r.buf = core.EnsureLen(r.buf, n)
	r.fill(r.buf)

	for start := 0; start < n; start += r.block {
		r.engine.Process(r.buf[start:min(start+r.block, n)])
	}

	return r.buf
}

// render returns n samples of dry input and the matching processed output.
func (r *renderer) render(n int) (in, out []float64) {
	in = make([]float64, n)
	r.fill(in)

	out = append([]float64(nil), in...)
	for start := 0; start < n; start += r.block {
		r.engine.Process(out[start:min(start+r.block, n)])
	}

	return in, out
}
