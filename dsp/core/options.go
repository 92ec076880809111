package core

// RenderConfig describes the render context a host engine drives its
// processing units with.
type RenderConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

// RenderOption mutates a RenderConfig.
type RenderOption func(*RenderConfig)

// DefaultRenderConfig returns mono 48 kHz rendering in 512-sample blocks.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SampleRate: 48000,
		BlockSize:  512,
		Channels:   1,
	}
}

// WithSampleRate sets the render sample rate.
func WithSampleRate(sampleRate float64) RenderOption {
	return func(cfg *RenderConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum render block size.
func WithBlockSize(blockSize int) RenderOption {
	return func(cfg *RenderConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the render channel count.
func WithChannels(channels int) RenderOption {
	return func(cfg *RenderConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// ApplyRenderOptions applies zero or more options to the default config.
func ApplyRenderOptions(opts ...RenderOption) RenderConfig {
	cfg := DefaultRenderConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
