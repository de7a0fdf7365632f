package health

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the Evaluator.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ProbeTimeout bounds each individual probe.
	ProbeTimeout time.Duration

	// HealthyThreshold is the inclusive minimum healthy ratio for a healthy verdict.
	HealthyThreshold float64

	// Clock supplies the current time.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithProbeTimeout configures the per-probe timeout.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.ProbeTimeout = timeout
		return nil
	}
}

// WithHealthyThreshold configures the inclusive healthy ratio threshold.
func WithHealthyThreshold(threshold float64) Option {
	return func(o *Options) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("healthy threshold must be in (0, 1], got %v", threshold)
		}
		o.HealthyThreshold = threshold
		return nil
	}
}

// WithClock configures the clock used to timestamp verdicts.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = now
		return nil
	}
}

// DefaultProbeTimeout is the default per-probe timeout.
func DefaultProbeTimeout() time.Duration {
	return 30 * time.Second
}

// DefaultHealthyThreshold is the default healthy ratio threshold.
// With five checks it absorbs a single failing check, two failures make the verdict unhealthy.
func DefaultHealthyThreshold() float64 {
	return 0.8
}

func defaultOptions() Options {
	return Options{
		ProbeTimeout:     DefaultProbeTimeout(),
		HealthyThreshold: DefaultHealthyThreshold(),
		Clock:            time.Now,
	}
}
