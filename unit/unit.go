// Package unit defines the boundary between the host and opaque audio
// processing units. The host never inspects a unit's DSP internals; it only
// drives it through the [Unit] interface.
package unit

import (
	"fmt"

	"github.com/cwbudde/algo-fxhost/param"
)

// Context provides environmental information a factory needs to build a unit.
type Context struct {
	SampleRate float64
	BlockSize  int
}

// Format describes the signal a unit consumes and produces.
type Format struct {
	SampleRate float64
	Channels   int
}

// Compatible reports whether a signal in format f can feed a unit expecting o.
func (f Format) Compatible(o Format) bool {
	return f.SampleRate == o.SampleRate && f.Channels == o.Channels
}

func (f Format) String() string {
	return fmt.Sprintf("%gHz/%dch", f.SampleRate, f.Channels)
}

// Unit is one instantiated processing unit.
//
// Process is called from the render context only, once per block, and
// must not block or allocate. It therefore must not write to its parameter
// tree: observers of the tree run on the writer's goroutine and may lock. All other methods are called from the
// control context. A unit that holds resources may also implement io.Closer.
type Unit interface {
	Parameters() *param.Tree
	Format() Format
	Start() error
	Stop()
	IsStarted() bool
	Process(block []float64)
}
