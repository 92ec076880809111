package effects

// Option configures the built-in units.
type Option func(*config)

type config struct {
	feedbackLimit float64
	mix           float64
}

func applyOptions(opts []Option) config {
	c := config{
		feedbackLimit: defaultFeedbackLimit,
		mix:           defaultReverbMix,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// WithReverbFeedbackLimit sets the largest feedback the reverb renders with.
// Values outside (0, 1) are ignored.
func WithReverbFeedbackLimit(limit float64) Option {
	return func(c *config) {
		if limit > 0 && limit < 1 {
			c.feedbackLimit = limit
		}
	}
}

// WithReverbMix sets the gain of the reverberated signal added to the dry
// input. Negative values are ignored.
func WithReverbMix(mix float64) Option {
	return func(c *config) {
		if mix >= 0 {
			c.mix = mix
		}
	}
}
