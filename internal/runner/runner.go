package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/nilcheck"
	"github.com/dduksang/deploymon/internal/printer"
	"github.com/dduksang/deploymon/internal/state"
)

// ErrUnhealthy is returned by RunOnce when the verdict is below the healthy threshold.
var ErrUnhealthy = errors.New("deployment is unhealthy")

// Runner drives evaluation cycles and feeds their verdicts to the state tracker,
// the metrics recorder, the status board and the alert dispatcher.
// A Runner must not be used from more than one goroutine at a time.
// NewRunner should be used to create instances of Runner.
type Runner struct {
	checks     []domain.CheckDefinition
	evaluator  contracts.Evaluator
	metrics    contracts.MetricsRecorder
	board      contracts.HealthBoard
	dispatcher contracts.AlertDispatcher
	tracker    *state.Tracker
	logger     hclog.Logger
	out        io.Writer
	interval   time.Duration
	now        func() time.Time
}

// NewRunner creates a Runner for the given checks.
func NewRunner(
	logger hclog.Logger,
	evaluator contracts.Evaluator,
	metrics contracts.MetricsRecorder,
	checks []domain.CheckDefinition,
	opt ...Option,
) (*Runner, error) {
	if nilcheck.IsNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if nilcheck.IsNil(evaluator) {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if nilcheck.IsNil(metrics) {
		return nil, fmt.Errorf("metrics recorder cannot be nil")
	}
	if len(checks) == 0 {
		return nil, fmt.Errorf("at least one check is required")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	var trackerOpts []state.Option
	if opts.OptimisticStart {
		trackerOpts = append(trackerOpts, state.WithOptimisticStart())
	}

	return &Runner{
		checks:     checks,
		evaluator:  evaluator,
		metrics:    metrics,
		board:      opts.Board,
		dispatcher: opts.Dispatcher,
		tracker:    state.NewTracker(opts.Clock(), trackerOpts...),
		logger:     logger.Named("runner"),
		out:        opts.Output,
		interval:   opts.Interval,
		now:        opts.Clock,
	}, nil
}

// RunOnce performs a single cycle.
// The verdict is always returned, wrapped with ErrUnhealthy when it is not healthy.
func (r *Runner) RunOnce(ctx context.Context) (domain.HealthVerdict, error) {
	v := r.cycle(ctx)
	if !v.Healthy {
		return v, ErrUnhealthy
	}
	return v, nil
}

// Run performs a cycle immediately and then one per interval until ctx is cancelled.
// Cancellation interrupts the wait between cycles but not a cycle in progress,
// which runs to completion on a context detached from ctx.
// Run returns nil on shutdown.
func (r *Runner) Run(ctx context.Context) error {
	cycleCtx := context.WithoutCancel(ctx)

	r.logger.Info("Starting monitor", "checks", len(r.checks), "interval", r.interval)

	for ctx.Err() == nil {
		r.cycle(cycleCtx)

		if !r.wait(ctx) {
			break
		}
	}

	r.logger.Info("Stopping monitor", "evaluations", r.tracker.Snapshot().TotalEvaluations)
	return nil
}

// Report returns the accumulated monitor state.
func (r *Runner) Report() domain.MonitorSnapshot {
	return r.tracker.Snapshot()
}

// Checks returns the checks evaluated each cycle.
func (r *Runner) Checks() []domain.CheckDefinition {
	return r.checks
}

// wait sleeps for the interval, returning false if ctx is cancelled first.
func (r *Runner) wait(ctx context.Context) bool {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Runner) cycle(ctx context.Context) domain.HealthVerdict {
	started := r.now()

	v, err := r.evaluate(ctx)
	if err != nil {
		r.logger.Error("Evaluation failed", "error", err)
		finished := r.now()
		v = domain.HealthVerdict{
			ID:         uuid.NewString(),
			TotalCount: len(r.checks),
			Timestamp:  finished.UTC(),
			Duration:   finished.Sub(started),
			Err:        err.Error(),
		}
	}

	r.metrics.RecordVerdict(v)

	event := r.tracker.Observe(v)
	snapshot := r.tracker.Snapshot()

	if r.board != nil {
		r.board.Publish(v, snapshot)
	}

	r.notify(ctx, event, v, snapshot)

	if err := printer.WriteStatusLine(r.out, v); err != nil {
		r.logger.Warn("Failed to write status line", "error", err)
	}

	r.logger.Debug(
		"Cycle complete",
		"id", v.ID,
		"healthy", v.Healthy,
		"ratio", v.Ratio,
		"state", snapshot.State,
		"consecutiveFailures", snapshot.ConsecutiveFailures,
	)

	return v
}

// evaluate runs the evaluator, converting a panic into an error.
func (r *Runner) evaluate(ctx context.Context) (v domain.HealthVerdict, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("evaluation panicked: %v", rec)
		}
	}()

	return r.evaluator.Evaluate(ctx, r.checks)
}

func (r *Runner) notify(ctx context.Context, event state.Event, v domain.HealthVerdict, s domain.MonitorSnapshot) {
	if event.Transition == state.TransitionNone {
		return
	}

	r.logger.Info(
		"Health state changed",
		"from", event.From,
		"to", event.To,
		"transition", event.Transition,
		"ratio", v.Ratio,
	)

	if r.dispatcher == nil {
		return
	}

	var err error
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Alert dispatcher panicked", "transition", event.Transition, "panic", rec)
		}
	}()

	switch event.Transition {
	case state.TransitionFailure:
		err = r.dispatcher.DispatchFailure(ctx, v, s)
	case state.TransitionRecovery:
		err = r.dispatcher.DispatchRecovery(ctx, v, s, event.Outage)
	}

	if err != nil {
		r.logger.Error("Alert delivery failed", "transition", event.Transition, "error", err)
	}
}
