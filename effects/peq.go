package effects

import (
	"sync/atomic"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Parameter addresses of the peaking equalizer.
const (
	PEQCenterFrequency uint64 = 0
	PEQGain            uint64 = 1
	PEQQ               uint64 = 2
)

const (
	minQ    = 0.01
	minGain = 1e-4
)

// PeakingEQDescription identifies the peaking equalizer.
var PeakingEQDescription = component.Effect("peq0", "AuKt")

var peqParams = param.MustTable(
	param.New(PEQCenterFrequency, "centerFrequency").Range(12, 20000).Default(1000).Unit("Hz").Build(),
	param.New(PEQGain, "gain").Range(0, 10).Default(1).Build(),
	param.New(PEQQ, "q").Range(0, 2).Default(0.707).Build(),
)

// PeakingEQ boosts or cuts a band around a center frequency.
type PeakingEQ struct {
	*unit.Base

	sampleRate float64
	dirty      atomic.Bool
	filter     section
}

// NewPeakingEQ creates a stopped equalizer at sampleRate.
func NewPeakingEQ(sampleRate float64) *PeakingEQ {
	eq := &PeakingEQ{
		Base:       unit.NewBase(peqParams, unit.Format{SampleRate: sampleRate, Channels: 1}),
		sampleRate: sampleRate,
	}
	eq.dirty.Store(true)

	eq.Parameters().Observe(func(uint64, float64, param.Originator) {
		eq.dirty.Store(true)
	})

	eq.OnStart(func() error {
		eq.filter.reset()
		return nil
	})

	return eq
}

// Process filters block in place.
func (eq *PeakingEQ) Process(block []float64) {
	if eq.dirty.Swap(false) {
		eq.filter.coefficients = eq.design()
	}

	eq.filter.processBlock(block)
}

func (eq *PeakingEQ) design() coefficients {
	t := eq.Parameters()
	freq, _ := t.Value(PEQCenterFrequency)
	gain, _ := t.Value(PEQGain)
	q, _ := t.Value(PEQQ)

	return peaking(freq, gain, q, eq.sampleRate)
}

func newPeakingEQ(ctx unit.Context) (unit.Unit, error) {
	err := checkContext(ctx)
	if err != nil {
		return nil, err
	}

	return NewPeakingEQ(ctx.SampleRate), nil
}
