package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxhost/component"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Registrations returns the registrations of all built-in units.
func Registrations(opts ...Option) []component.Registration {
	c := applyOptions(opts)

	return []component.Registration{
		{
			Description: PeakingEQDescription,
			Name:        "Peaking Parametric Equalizer Filter",
			Version:     1,
			Params:      peqParams,
			New:         newPeakingEQ,
		},
		{
			Description: CostelloReverbDescription,
			Name:        "Costello Reverb",
			Version:     1,
			Params:      reverbParams,
			Config:      c,
			New: func(ctx unit.Context) (unit.Unit, error) {
				err := checkContext(ctx)
				if err != nil {
					return nil, err
				}

				return NewCostelloReverb(ctx.SampleRate, ctx.BlockSize,
					WithReverbFeedbackLimit(c.feedbackLimit), WithReverbMix(c.mix)), nil
			},
		},
	}
}

// Register adds the built-in units to r.
func Register(r *component.Registry, opts ...Option) error {
	for _, reg := range Registrations(opts...) {
		err := r.Register(reg)
		if err != nil {
			return fmt.Errorf("effects: register %s: %w", reg.Name, err)
		}
	}

	return nil
}

// DefaultRegistry returns a registry holding the built-in units.
func DefaultRegistry(opts ...Option) *component.Registry {
	r := component.NewRegistry()

	err := Register(r, opts...)
	if err != nil {
		panic(err)
	}

	return r
}

func checkContext(ctx unit.Context) error {
	if ctx.SampleRate <= 0 || math.IsNaN(ctx.SampleRate) || math.IsInf(ctx.SampleRate, 0) {
		return fmt.Errorf("effects: sample rate must be > 0: %f", ctx.SampleRate)
	}

	return nil
}
