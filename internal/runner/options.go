package runner

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

// Options contains optional configuration for the Runner.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Interval is the pause between cycles in continuous mode.
	Interval time.Duration

	// Output receives one status line per cycle.
	Output io.Writer

	// Clock supplies the current time.
	Clock func() time.Time

	// Board, when set, receives every verdict for the status API.
	Board contracts.HealthBoard

	// Dispatcher, when set, is notified about health transitions.
	Dispatcher contracts.AlertDispatcher

	// OptimisticStart reports the deployment healthy before the first verdict.
	OptimisticStart bool
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

// WithInterval configures the pause between cycles.
func WithInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("check interval must be positive, got %v", interval)
		}
		o.Interval = interval
		return nil
	}
}

// WithOutput configures where status lines are written.
func WithOutput(w io.Writer) Option {
	return func(o *Options) error {
		if nilcheck.IsNil(w) {
			return fmt.Errorf("output writer cannot be nil")
		}
		o.Output = w
		return nil
	}
}

// WithClock configures the clock.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = now
		return nil
	}
}

// WithBoard publishes every verdict to the board.
func WithBoard(b contracts.HealthBoard) Option {
	return func(o *Options) error {
		if nilcheck.IsNil(b) {
			return fmt.Errorf("health board cannot be nil")
		}
		o.Board = b
		return nil
	}
}

// WithDispatcher enables alerts on health transitions.
func WithDispatcher(d contracts.AlertDispatcher) Option {
	return func(o *Options) error {
		if nilcheck.IsNil(d) {
			return fmt.Errorf("alert dispatcher cannot be nil")
		}
		o.Dispatcher = d
		return nil
	}
}

// WithOptimisticStart starts in the healthy state instead of unknown.
func WithOptimisticStart(enabled bool) Option {
	return func(o *Options) error {
		o.OptimisticStart = enabled
		return nil
	}
}

// DefaultInterval is the default pause between cycles.
func DefaultInterval() time.Duration {
	return 60 * time.Second
}

func defaultOptions() Options {
	return Options{
		Interval: DefaultInterval(),
		Output:   os.Stdout,
		Clock:    time.Now,
	}
}
