package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

const (
	EventFailure  = "failure"
	EventRecovery = "recovery"
)

var _ contracts.AlertDispatcher = (*Dispatcher)(nil)

// AlertError reports that an alert could not be delivered.
type AlertError struct {
	Event string
	Err   error
}

func (e *AlertError) Error() string {
	return fmt.Sprintf("failed to dispatch %s alert: %v", e.Event, e.Err)
}

func (e *AlertError) Unwrap() error {
	return e.Err
}

// Dispatcher formats health events and delivers them to a Sink.
// Each event results in at most one delivery attempt.
// NewDispatcher should be used to create instances of Dispatcher.
type Dispatcher struct {
	sink    Sink
	metrics contracts.MetricsReader
	logger  hclog.Logger
	target  string
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher.
// target is the monitored base URL included in messages, metrics may be nil.
func NewDispatcher(logger hclog.Logger, sink Sink, metrics contracts.MetricsReader, target string) (*Dispatcher, error) {
	if nilcheck.IsNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if nilcheck.IsNil(sink) {
		return nil, fmt.Errorf("alert sink cannot be nil")
	}

	return &Dispatcher{
		sink:    sink,
		metrics: metrics,
		logger:  logger.Named("alert"),
		target:  target,
		timeout: DefaultSendTimeout(),
	}, nil
}

// DispatchFailure sends a failure alert for the verdict.
func (d *Dispatcher) DispatchFailure(ctx context.Context, v domain.HealthVerdict, s domain.MonitorSnapshot) error {
	return d.dispatch(ctx, EventFailure, FailureMessage(d.target, v, s, d.metrics))
}

// DispatchRecovery sends a recovery alert for the verdict.
func (d *Dispatcher) DispatchRecovery(
	ctx context.Context,
	v domain.HealthVerdict,
	s domain.MonitorSnapshot,
	outage time.Duration,
) error {
	return d.dispatch(ctx, EventRecovery, RecoveryMessage(d.target, v, s, outage, d.metrics))
}

func (d *Dispatcher) dispatch(ctx context.Context, event string, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &AlertError{Event: event, Err: fmt.Errorf("sink panicked: %v", r)}
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sink.Send(sendCtx, text); err != nil {
		return &AlertError{Event: event, Err: err}
	}

	d.logger.Info("Alert dispatched", "event", event)
	return nil
}
