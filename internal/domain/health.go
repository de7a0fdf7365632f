package domain

import (
	"time"
)

const (
	HealthStatusOK          HealthStatus = "ok"
	HealthStatusTimeout     HealthStatus = "timeout"
	HealthStatusUnreachable HealthStatus = "unreachable"
	HealthStatusUnexpected  HealthStatus = "unexpected"
	HealthStatusUnknown     HealthStatus = "unknown"
)

// HealthStatus represents the latest known availability of a single check target.
type HealthStatus string

// CheckStatus tracks the internal health state for a single named check.
type CheckStatus struct {
	Name           string
	Status         HealthStatus
	StatusCode     *int
	Latency        *time.Duration
	Reason         string
	LastChecked    *time.Time
	LastSuccessful *time.Time
}

// CheckOutcome pairs a probe result with the evaluator's judgement of it.
type CheckOutcome struct {
	Result  ProbeResult
	Healthy bool

	// Reason is a short human-readable explanation when Healthy is false.
	Reason string
}

// Status derives the board status for an outcome.
func (o CheckOutcome) Status() HealthStatus {
	switch {
	case o.Healthy:
		return HealthStatusOK
	case o.Result.ErrorKind == ErrorKindTimeout:
		return HealthStatusTimeout
	case o.Result.ErrorKind == ErrorKindConnection:
		return HealthStatusUnreachable
	default:
		return HealthStatusUnexpected
	}
}

// HealthVerdict is the aggregated result of one evaluation cycle.
type HealthVerdict struct {
	// ID uniquely identifies the evaluation cycle.
	ID           string
	HealthyCount int
	TotalCount   int

	// Ratio is HealthyCount/TotalCount, between 0.0 and 1.0.
	Ratio     float64
	Healthy   bool
	Outcomes  []CheckOutcome
	Timestamp time.Time
	Duration  time.Duration

	// Err is set when the evaluation step itself failed, rather than any probe.
	Err string
}

// Failed returns the unhealthy outcomes in check order.
func (v HealthVerdict) Failed() []CheckOutcome {
	var failed []CheckOutcome
	for _, o := range v.Outcomes {
		if !o.Healthy {
			failed = append(failed, o)
		}
	}
	return failed
}
