package graph

import (
	"sync/atomic"

	"github.com/cwbudde/algo-fxhost/unit"
)

var mono48 = unit.Format{SampleRate: 48000, Channels: 1}

// testVertex is a minimal Vertex whose processor can be swapped at runtime.
type testVertex struct {
	id     uint64
	format unit.Format
	proc   atomic.Pointer[Processor]
}

func newVertex(id uint64, p Processor) *testVertex {
	v := &testVertex{id: id, format: mono48}
	if p != nil {
		v.proc.Store(&p)
	}

	return v
}

func (v *testVertex) VertexID() uint64     { return v.id }
func (v *testVertex) Format() unit.Format { return v.format }

func (v *testVertex) Processor() Processor {
	p := v.proc.Load()
	if p == nil {
		return nil
	}

	return *p
}

// gainProcessor multiplies every sample by a fixed gain.
type gainProcessor struct {
	gain float64
}

func (g gainProcessor) Process(block []float64) {
	for i := range block {
		block[i] *= g.gain
	}
}

// addProcessor adds a constant to every sample.
type addProcessor struct {
	value float64
}

func (a addProcessor) Process(block []float64) {
	for i := range block {
		block[i] += a.value
	}
}
