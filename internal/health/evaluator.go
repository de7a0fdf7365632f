package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/nilcheck"
)

// ErrNoChecks is returned when an evaluation is requested for an empty check list.
var ErrNoChecks = errors.New("no checks to evaluate")

var _ contracts.Evaluator = (*Evaluator)(nil)

// Evaluator runs a batch of checks concurrently and aggregates them into a verdict.
// NewEvaluator should be used to create instances of Evaluator.
type Evaluator struct {
	prober    contracts.Prober
	logger    hclog.Logger
	timeout   time.Duration
	threshold float64
	now       func() time.Time
	newID     func() string
}

// NewEvaluator creates an Evaluator with default options, then applies the supplied options in order.
func NewEvaluator(logger hclog.Logger, prober contracts.Prober, opt ...Option) (*Evaluator, error) {
	if nilcheck.IsNil(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if nilcheck.IsNil(prober) {
		return nil, fmt.Errorf("prober cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		prober:    prober,
		logger:    logger.Named("evaluator"),
		timeout:   opts.ProbeTimeout,
		threshold: opts.HealthyThreshold,
		now:       opts.Clock,
		newID:     uuid.NewString,
	}, nil
}

// Threshold returns the inclusive healthy ratio threshold used by the evaluator.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate probes every check concurrently and waits for all of them before judging the batch.
// Probe failures are part of the verdict. An error is only returned when the evaluation itself could not run.
func (e *Evaluator) Evaluate(ctx context.Context, checks []domain.CheckDefinition) (domain.HealthVerdict, error) {
	if len(checks) == 0 {
		return domain.HealthVerdict{}, ErrNoChecks
	}

	started := e.now()
	results := make([]domain.ProbeResult, len(checks))

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("probe for check '%s' panicked: %v", check.Name, r)
				}
			}()

			// Each probe only writes to its own slot.
			results[i] = e.prober.Probe(ctx, check, e.timeout)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.HealthVerdict{}, err
	}

	outcomes := make([]domain.CheckOutcome, len(checks))
	healthy := 0
	for i, check := range checks {
		outcomes[i] = Judge(check, results[i])
		if outcomes[i].Healthy {
			healthy++
		}
	}

	ratio := float64(healthy) / float64(len(checks))
	finished := e.now()

	verdict := domain.HealthVerdict{
		ID:           e.newID(),
		HealthyCount: healthy,
		TotalCount:   len(checks),
		Ratio:        ratio,
		Healthy:      IsHealthy(ratio, e.threshold),
		Outcomes:     outcomes,
		Timestamp:    finished.UTC(),
		Duration:     finished.Sub(started),
	}

	e.logger.Debug(
		"Evaluation complete",
		"id", verdict.ID,
		"healthy", verdict.HealthyCount,
		"total", verdict.TotalCount,
		"ratio", verdict.Ratio,
		"duration", verdict.Duration,
	)

	return verdict, nil
}

// Judge decides whether a single probe result satisfies its check definition.
func Judge(check domain.CheckDefinition, result domain.ProbeResult) domain.CheckOutcome {
	outcome := domain.CheckOutcome{Result: result}

	switch {
	case result.ErrorKind == domain.ErrorKindTimeout:
		outcome.Reason = "timeout"
	case result.ErrorKind == domain.ErrorKindConnection:
		outcome.Reason = "connection error"
	case result.ErrorKind != domain.ErrorKindNone && result.ErrorKind != "":
		outcome.Reason = "request error"
	case result.StatusCode == nil:
		outcome.Reason = "no response"
	case !check.Expects(*result.StatusCode):
		outcome.Reason = fmt.Sprintf("status %d", *result.StatusCode)
	case check.ExpectedBodySubstring != "" && !containsFold(result.Body, check.ExpectedBodySubstring):
		outcome.Reason = fmt.Sprintf("missing body text %q", check.ExpectedBodySubstring)
	default:
		outcome.Healthy = true
	}

	return outcome
}

// IsHealthy applies the inclusive threshold policy to a healthy ratio.
func IsHealthy(ratio float64, threshold float64) bool {
	// Tolerate float error so that e.g. 4/5 still meets a 0.8 threshold.
	const epsilon = 1e-9
	return ratio+epsilon >= threshold
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
