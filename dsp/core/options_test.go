package core

import (
	"math"
	"testing"
)

func TestApplyRenderOptions(t *testing.T) {
	cfg := ApplyRenderOptions(WithSampleRate(96000), WithBlockSize(2048), WithChannels(2))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}

	if cfg.BlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.BlockSize)
	}

	if cfg.Channels != 2 {
		t.Fatalf("channels = %d, want 2", cfg.Channels)
	}
}

func TestInvalidRenderOptionsIgnored(t *testing.T) {
	cfg := ApplyRenderOptions(WithSampleRate(0), WithSampleRate(math.NaN()), WithBlockSize(-1), WithChannels(0), nil)

	def := DefaultRenderConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}
