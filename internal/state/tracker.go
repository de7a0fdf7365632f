package state

import (
	"time"

	"github.com/dduksang/deploymon/internal/domain"
)

const (
	TransitionNone     Transition = ""
	TransitionFailure  Transition = "failure"
	TransitionRecovery Transition = "recovery"
)

// Transition is an edge between two consecutive overall health states.
type Transition string

// Event describes what changed as a result of observing a verdict.
type Event struct {
	Transition Transition
	From       domain.State
	To         domain.State

	// Outage is the time since the failure transition, set on recovery.
	Outage time.Duration
}

// Tracker is the monitor state machine.
// It is owned by a single loop and must not be shared between goroutines;
// other components read it via Snapshot.
// NewTracker should be used to create instances of Tracker.
type Tracker struct {
	state               domain.State
	consecutiveFailures int
	startedAt           time.Time
	lastCheck           time.Time
	checked             bool
	uptime              time.Duration
	downtime            time.Duration
	totalEvaluations    int
	failedEvaluations   int
	unhealthySince      time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithOptimisticStart starts the tracker in the healthy state instead of unknown,
// so the deployment is reported healthy before the first verdict arrives.
func WithOptimisticStart() Option {
	return func(t *Tracker) {
		t.state = domain.StateHealthy
	}
}

// NewTracker creates a tracker whose accounting starts at startedAt.
func NewTracker(startedAt time.Time, opts ...Option) *Tracker {
	t := &Tracker{
		state:     domain.StateUnknown,
		startedAt: startedAt,
		lastCheck: startedAt,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// State returns the current overall health state.
func (t *Tracker) State() domain.State {
	return t.state
}

// Observe applies one evaluation cycle's verdict to the state.
// Counters and uptime/downtime are updated on every call, an Event with a transition
// is only produced when the overall state changes in a way that warrants an alert.
func (t *Tracker) Observe(v domain.HealthVerdict) Event {
	now := v.Timestamp
	elapsed := now.Sub(t.lastCheck)
	if elapsed < 0 {
		elapsed = 0
	} else {
		t.lastCheck = now
	}
	t.checked = true

	t.totalEvaluations++

	if v.Healthy {
		t.consecutiveFailures = 0
		t.uptime += elapsed
	} else {
		t.consecutiveFailures++
		t.failedEvaluations++
		t.downtime += elapsed
	}

	prev := t.state
	next := domain.StateHealthy
	if !v.Healthy {
		next = domain.StateUnhealthy
	}
	t.state = next

	event := Event{From: prev, To: next}

	switch {
	case prev == domain.StateUnhealthy && next == domain.StateHealthy:
		event.Transition = TransitionRecovery
		event.Outage = now.Sub(t.unhealthySince)
		t.unhealthySince = time.Time{}
	case prev != domain.StateUnhealthy && next == domain.StateUnhealthy:
		// Covers both healthy->unhealthy and a first verdict that is already unhealthy.
		event.Transition = TransitionFailure
		t.unhealthySince = now
	}

	return event
}

// Snapshot returns a read-only copy of the accumulated state.
func (t *Tracker) Snapshot() domain.MonitorSnapshot {
	s := domain.MonitorSnapshot{
		State:               t.state,
		ConsecutiveFailures: t.consecutiveFailures,
		StartedAt:           t.startedAt,
		Uptime:              t.uptime,
		Downtime:            t.downtime,
		TotalEvaluations:    t.totalEvaluations,
		FailedEvaluations:   t.failedEvaluations,
	}

	if t.checked {
		last := t.lastCheck
		s.LastCheck = &last
	}

	return s
}
