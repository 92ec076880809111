package component

import (
	"cmp"

	"github.com/cwbudde/algo-fxhost/param"
	"github.com/cwbudde/algo-fxhost/unit"
)

// Description uniquely identifies a unit implementation by its
// type/subtype/manufacturer tuple.
type Description struct {
	Type         FourCC
	Subtype      FourCC
	Manufacturer FourCC
}

// Effect returns the description of an effect unit.
func Effect(subtype, manufacturer string) Description {
	return Description{
		Type:         TypeEffect,
		Subtype:      MustFourCC(subtype),
		Manufacturer: MustFourCC(manufacturer),
	}
}

// IsZero reports whether d is the zero description.
func (d Description) IsZero() bool {
	return d == Description{}
}

func (d Description) String() string {
	return d.Type.String() + "/" + d.Subtype.String() + "/" + d.Manufacturer.String()
}

// Compare orders descriptions by type, subtype, then manufacturer.
func (d Description) Compare(o Description) int {
	if c := cmp.Compare(d.Type, o.Type); c != 0 {
		return c
	}

	if c := cmp.Compare(d.Subtype, o.Subtype); c != 0 {
		return c
	}

	return cmp.Compare(d.Manufacturer, o.Manufacturer)
}

// Factory builds one unit instance. It may block; the instantiation
// pipeline never calls it on the control context.
type Factory func(ctx unit.Context) (unit.Unit, error)

// Registration binds a description to a factory and the static metadata of
// the unit type.
//
// Config identifies the state New closes over. Two registrations built from
// the same function with different captured state are only identical when
// their Configs are equal, so a configured factory must set it to a
// comparable value.
type Registration struct {
	Description Description
	Name        string
	Version     uint32
	Params      *param.Table
	Channels    int // 0 means mono
	New         Factory
	Config      any
}

// Format returns the signal format instances of this registration use when
// rendered at sampleRate.
func (r Registration) Format(sampleRate float64) unit.Format {
	ch := r.Channels
	if ch <= 0 {
		ch = 1
	}

	return unit.Format{SampleRate: sampleRate, Channels: ch}
}
