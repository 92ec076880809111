package effects

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Parameter addresses of the reverb.
const (
	ReverbFeedback        uint64 = 0
	ReverbCutoffFrequency uint64 = 1
)

const (
	reverbLines = 8

	defaultFeedbackLimit = 0.999
	defaultReverbMix     = 0.35
	reverbReferenceRate  = 44100.0
)

// Delay lengths in samples at the reference rate. Mutually prime so the
// echo densities of the lines do not line up.
var reverbDelays = [reverbLines]float64{1537, 1753, 1999, 2251, 2473, 2689, 2851, 3067}

// CostelloReverbDescription identifies the reverb.
var CostelloReverbDescription = component.Effect("rvsc", "AuKt")

var reverbParams = param.MustTable(
	param.New(ReverbFeedback, "feedback").Range(0, 1).Default(0.6).Build(),
	param.New(ReverbCutoffFrequency, "cutoffFrequency").Range(12, 20000).Default(4000).Unit("Hz").Build(),
)

type delayLine struct {
	buf []float64
	pos int
}

func newDelayLine(n int) delayLine {
	return delayLine{buf: make([]float64, max(n, 1))}
}

func (d *delayLine) read() float64 {
	return d.buf[d.pos]
}

func (d *delayLine) write(v float64) {
	d.buf[d.pos] = v

	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

// CostelloReverb is a mono eight-line feedback delay network with a
// Householder mixing matrix and one-pole lowpass damping in every loop.
//
// Feedback at or above the configured limit makes the network unstable.
// The unit watches its parameter tree and writes the limit back whenever a
// larger feedback is stored; the write runs on the writer's goroutine,
// never inside Process.
type CostelloReverb struct {
	*unit.Base

	sampleRate float64
	limit      float64
	mix        float64

	lines [reverbLines]delayLine
	damp  [reverbLines]float64
	wet   []float64
}

// NewCostelloReverb creates a stopped reverb at sampleRate. blockSize sizes
// the internal wet buffer.
func NewCostelloReverb(sampleRate float64, blockSize int, opts ...Option) *CostelloReverb {
	c := applyOptions(opts)

	r := &CostelloReverb{
		Base:       unit.NewBase(reverbParams, unit.Format{SampleRate: sampleRate, Channels: 1}),
		sampleRate: sampleRate,
		limit:      c.feedbackLimit,
		mix:        c.mix,
		wet:        make([]float64, max(blockSize, 0)),
	}

	scale := sampleRate / reverbReferenceRate
	for i := range r.lines {
		r.lines[i] = newDelayLine(int(math.Round(reverbDelays[i] * scale)))
	}

	r.Parameters().Observe(r.limitFeedback)

	r.OnStart(func() error {
		r.reset()
		return nil
	})

	return r
}

// FeedbackLimit returns the largest feedback the unit renders with.
func (r *CostelloReverb) FeedbackLimit() float64 {
	return r.limit
}

// Process adds the reverberated signal to block.
func (r *CostelloReverb) Process(block []float64) {
	t := r.Parameters()

	fb, _ := t.Value(ReverbFeedback)
	fb = min(fb, r.limit)

	cutoff, _ := t.Value(ReverbCutoffFrequency)
	coef := math.Exp(-2 * math.Pi * min(cutoff, 0.49*r.sampleRate) / r.sampleRate)

	r.wet = core.EnsureLen(r.wet, len(block))

	var out [reverbLines]float64

	for n, x := range block {
		sum := 0.0
		for i := range r.lines {
			out[i] = r.lines[i].read()
			sum += out[i]
		}

		mixdown := sum * (2.0 / reverbLines)
		for i := range r.lines {
			v := fb * (out[i] - mixdown)
			r.damp[i] = core.FlushDenormals((1-coef)*v + coef*r.damp[i])
			r.lines[i].write(x + r.damp[i])
		}

		r.wet[n] = sum / reverbLines
	}

	vecmath.ScaleBlock(r.wet, r.wet, r.mix)
	vecmath.AddBlockInPlace(block, r.wet)
}

func (r *CostelloReverb) limitFeedback(addr uint64, value float64, _ param.Originator) {
	if addr == ReverbFeedback && value > r.limit {
		_ = r.Parameters().SetValue(ReverbFeedback, r.limit, param.HostOriginator)
	}
}

func (r *CostelloReverb) reset() {
	for i := range r.lines {
		clear(r.lines[i].buf)
		r.lines[i].pos = 0
		r.damp[i] = 0
	}
}
