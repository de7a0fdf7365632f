package contracts

import (
	"context"
	"time"

	"github.com/dduksang/deploymon/internal/domain"
)

// Prober issues a single timed request for a check definition.
// Implementations must represent every failure as a value on the returned result.
type Prober interface {
	Probe(ctx context.Context, check domain.CheckDefinition, timeout time.Duration) domain.ProbeResult
}

// HealthBoard provides a way to interact with the latest published health of the monitored deployment.
type HealthBoard interface {
	// Status returns the health status for a single tracked check.
	Status(name string) (domain.CheckStatus, error)

	// List returns a copy of all known check statuses.
	List() []domain.CheckStatus

	// Publish records the outcome of an evaluation cycle together with the monitor state after it.
	Publish(verdict domain.HealthVerdict, snapshot domain.MonitorSnapshot)

	// Latest returns the most recently published verdict and monitor state.
	// The boolean is false until the first cycle has been published.
	Latest() (domain.HealthVerdict, domain.MonitorSnapshot, bool)
}

// MetricsReader provides read access to recorded latency samples.
type MetricsReader interface {
	// Samples returns the retained samples for a metric, oldest first.
	Samples(name string) []domain.MetricSample

	// Latest returns the most recent sample for a metric.
	Latest(name string) (domain.MetricSample, bool)

	// Names returns all metric names with at least one sample, sorted.
	Names() []string

	// Summarize aggregates the retained samples for a metric.
	Summarize(name string) (domain.MetricSummary, bool)
}

// Evaluator runs one evaluation cycle over a set of checks.
type Evaluator interface {
	Evaluate(ctx context.Context, checks []domain.CheckDefinition) (domain.HealthVerdict, error)
}

// MetricsRecorder stores the samples derived from a verdict.
type MetricsRecorder interface {
	RecordVerdict(verdict domain.HealthVerdict)
}

// AlertDispatcher notifies operators about health transitions.
// Implementations return delivery failures rather than acting on them.
type AlertDispatcher interface {
	DispatchFailure(ctx context.Context, verdict domain.HealthVerdict, snapshot domain.MonitorSnapshot) error
	DispatchRecovery(
		ctx context.Context,
		verdict domain.HealthVerdict,
		snapshot domain.MonitorSnapshot,
		outage time.Duration,
	) error
}
