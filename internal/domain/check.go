package domain

import (
	"slices"
	"time"
)

const (
	ErrorKindNone       ErrorKind = "none"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindConnection ErrorKind = "connection"
	ErrorKindOther      ErrorKind = "other"
)

// ErrorKind classifies how a probe failed at the transport level.
type ErrorKind string

// CheckDefinition describes what to probe and what counts as healthy for it.
// Definitions are created once at configuration time and never mutated.
type CheckDefinition struct {
	Name                  string
	URL                   string
	Method                string
	ExpectedStatusCodes   []int
	ExpectedBodySubstring string
}

// Expects reports whether the status code is one of the expected codes.
func (c CheckDefinition) Expects(code int) bool {
	return slices.Contains(c.ExpectedStatusCodes, code)
}

// ProbeResult is the outcome of a single probe execution.
type ProbeResult struct {
	CheckName string

	// StatusCode is nil when no response was received.
	StatusCode *int
	Latency    time.Duration

	// Body holds the (size limited) response body used for substring matching.
	Body string

	// BodyExcerpt is a short prefix of Body suitable for display.
	BodyExcerpt string
	ErrorKind   ErrorKind
	Err         string
	Timestamp   time.Time
}

// MetricSample is a single latency observation for a named metric.
type MetricSample struct {
	Name      string
	Value     time.Duration
	Timestamp time.Time
}

// MetricSummary aggregates the retained samples of a metric.
type MetricSummary struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	Last  time.Duration
}
