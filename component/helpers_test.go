package component

import (
	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

type stubUnit struct {
	*unit.Base
}

func (s *stubUnit) Process(_ []float64) {}

var stubTable = param.MustTable(
	param.New(0, "centerFrequency").Range(12, 20000).Default(1000).Build(),
	param.New(1, "gain").Range(0, 10).Default(1).Build(),
	param.New(2, "q").Range(0, 2).Default(0.707).Build(),
)

func stubFactory(ctx unit.Context) (unit.Unit, error) {
	return &stubUnit{Base: unit.NewBase(stubTable, unit.Format{SampleRate: ctx.SampleRate, Channels: 1})}, nil
}

func otherFactory(ctx unit.Context) (unit.Unit, error) {
	return &stubUnit{Base: unit.NewBase(stubTable, unit.Format{SampleRate: ctx.SampleRate, Channels: 1})}, nil
}

func scaledFactory(scale float64) Factory {
	return func(ctx unit.Context) (unit.Unit, error) {
		u, err := stubFactory(ctx)
		if err != nil {
			return nil, err
		}

		_ = u.Parameters().SetValue(1, scale, param.HostOriginator)

		return u, nil
	}
}

func peqRegistration() Registration {
	return Registration{
		Description: Effect("peq0", "AuKt"),
		Name:        "Local PeakingParametricEqualizerFilter",
		Version:     1,
		Params:      stubTable,
		New:         stubFactory,
	}
}
