package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dduksang/deploymon/internal/board"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/errors"
)

func intPtr(v int) *int { return &v }

var cycleTime = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func publishedBoard(t *testing.T, healthy bool) *board.Board {
	t.Helper()

	b := board.NewBoard([]string{"Homepage", "API"})

	apiCode := 200
	if !healthy {
		apiCode = 500
	}

	v := domain.HealthVerdict{
		ID:           "cycle-1",
		HealthyCount: 1,
		TotalCount:   2,
		Ratio:        0.5,
		Healthy:      healthy,
		Timestamp:    cycleTime,
		Duration:     250 * time.Millisecond,
		Outcomes: []domain.CheckOutcome{
			{
				Result:  domain.ProbeResult{CheckName: "Homepage", StatusCode: intPtr(200), Latency: 120 * time.Millisecond, ErrorKind: domain.ErrorKindNone},
				Healthy: true,
			},
			{
				Result:  domain.ProbeResult{CheckName: "API", StatusCode: intPtr(apiCode), Latency: 80 * time.Millisecond, BodyExcerpt: "oops", ErrorKind: domain.ErrorKindNone},
				Healthy: healthy,
				Reason:  map[bool]string{false: "status 500"}[healthy],
			},
		},
	}
	if healthy {
		v.HealthyCount, v.Ratio = 2, 1
	}

	state := domain.StateHealthy
	if !healthy {
		state = domain.StateUnhealthy
	}
	last := cycleTime
	b.Publish(v, domain.MonitorSnapshot{
		State:               state,
		StartedAt:           cycleTime.Add(-time.Minute),
		LastCheck:           &last,
		Uptime:              time.Minute,
		TotalEvaluations:    1,
		ConsecutiveFailures: map[bool]int{false: 1}[healthy],
	})

	return b
}

func TestParseHealthStatus_ValidCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    domain.HealthStatus
		expected HealthStatus
	}{
		{"ok", domain.HealthStatusOK, HealthStatusOK},
		{"timeout", domain.HealthStatusTimeout, HealthStatusTimeout},
		{"unreachable", domain.HealthStatusUnreachable, HealthStatusUnreachable},
		{"unexpected", domain.HealthStatusUnexpected, HealthStatusUnexpected},
		{"unknown", domain.HealthStatusUnknown, HealthStatusUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseHealthStatus(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestParseHealthStatus_InvalidCase(t *testing.T) {
	t.Parallel()

	input := domain.HealthStatus("invalid-status")
	_, err := parseHealthStatus(input)
	require.EqualError(t, err, fmt.Sprintf("unknown health status: %s", input))
}

func TestDomainCheckStatus_ToAPIType(t *testing.T) {
	t.Parallel()

	latency := 120 * time.Millisecond
	checked := cycleTime
	got, err := DomainCheckStatus(domain.CheckStatus{
		Name:        "Homepage",
		Status:      domain.HealthStatusOK,
		StatusCode:  intPtr(200),
		Latency:     &latency,
		LastChecked: &checked,
	}).ToAPIType()
	require.NoError(t, err)
	require.Equal(t, "Homepage", got.Name)
	require.Equal(t, HealthStatusOK, got.Status)
	require.Equal(t, "120ms", *got.Latency)
	require.Equal(t, 200, *got.StatusCode)
	require.Nil(t, got.LastSuccessful)

	_, err = DomainCheckStatus(domain.CheckStatus{Status: "bogus"}).ToAPIType()
	require.Error(t, err)
}

func TestHandleMonitorHealth(t *testing.T) {
	t.Parallel()

	resp, err := handleMonitorHealth(board.NewBoard([]string{"Homepage"}))
	require.NoError(t, err)
	require.Equal(t, "unknown", resp.Body.State)
	require.Equal(t, 1.0, resp.Body.Availability)
	require.Nil(t, resp.Body.StartedAt)

	resp, err = handleMonitorHealth(publishedBoard(t, false))
	require.NoError(t, err)
	require.Equal(t, "unhealthy", resp.Body.State)
	require.Equal(t, 1, resp.Body.ConsecutiveFailures)
	require.Equal(t, 1, resp.Body.HealthyCount)
	require.Equal(t, 2, resp.Body.TotalCount)
	require.Equal(t, 0.5, resp.Body.Ratio)
	require.Equal(t, 60.0, resp.Body.UptimeSeconds)
}

func TestHandleLatestVerdict(t *testing.T) {
	t.Parallel()

	_, err := handleLatestVerdict(board.NewBoard([]string{"Homepage"}))
	require.ErrorIs(t, err, errors.ErrNoVerdict)

	resp, err := handleLatestVerdict(publishedBoard(t, false))
	require.NoError(t, err)
	require.Equal(t, "cycle-1", resp.Body.ID)
	require.Equal(t, "250ms", resp.Body.Duration)
	require.Len(t, resp.Body.Checks, 2)
	require.Equal(t, "Homepage", resp.Body.Checks[0].Name)
	require.Nil(t, resp.Body.Checks[0].Excerpt)
	require.Equal(t, "status 500", resp.Body.Checks[1].Reason)
	require.Equal(t, "oops", *resp.Body.Checks[1].Excerpt)
}

func TestHandleChecksHealth(t *testing.T) {
	t.Parallel()

	resp, err := handleChecksHealth(publishedBoard(t, false))
	require.NoError(t, err)
	require.Len(t, resp.Body.Checks, 2)

	// Sorted by name.
	require.Equal(t, "API", resp.Body.Checks[0].Name)
	require.Equal(t, HealthStatusUnexpected, resp.Body.Checks[0].Status)
	require.Equal(t, "Homepage", resp.Body.Checks[1].Name)
	require.Equal(t, HealthStatusOK, resp.Body.Checks[1].Status)
}

func TestHandleCheckHealth(t *testing.T) {
	t.Parallel()

	b := publishedBoard(t, true)

	resp, err := handleCheckHealth(b, "API")
	require.NoError(t, err)
	require.Equal(t, HealthStatusOK, resp.Body.Status)
	require.NotNil(t, resp.Body.LastSuccessful)

	_, err = handleCheckHealth(b, "Missing")
	require.ErrorIs(t, err, errors.ErrCheckNotTracked)
}

func TestHandleLiveness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		board          *board.Board
		expectedStatus int
		expectedState  string
	}{
		{name: "no verdict yet", board: board.NewBoard([]string{"Homepage"}), expectedStatus: http.StatusOK, expectedState: "unknown"},
		{name: "healthy", board: publishedBoard(t, true), expectedStatus: http.StatusOK, expectedState: "healthy"},
		{name: "unhealthy", board: publishedBoard(t, false), expectedStatus: http.StatusServiceUnavailable, expectedState: "unhealthy"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp := handleLiveness(tc.board)
			require.Equal(t, tc.expectedStatus, resp.Status)
			require.Equal(t, tc.expectedState, resp.Body.State)
		})
	}
}
