package domain

import "time"

const (
	StateUnknown   State = "unknown"
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
)

// State is the overall health state of the monitored deployment.
type State string

// MonitorSnapshot is a read-only copy of the accumulated monitor state.
type MonitorSnapshot struct {
	State               State
	ConsecutiveFailures int
	StartedAt           time.Time
	LastCheck           *time.Time
	Uptime              time.Duration
	Downtime            time.Duration
	TotalEvaluations    int
	FailedEvaluations   int
}

// Availability returns the fraction of observed time spent healthy.
// It returns 1 when no time has been observed yet.
func (s MonitorSnapshot) Availability() float64 {
	total := s.Uptime + s.Downtime
	if total <= 0 {
		return 1
	}
	return float64(s.Uptime) / float64(total)
}
