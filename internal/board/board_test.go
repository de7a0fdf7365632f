package board

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dduksang/deploymon/internal/domain"
	apperrors "github.com/dduksang/deploymon/internal/errors"
)

func intPtr(i int) *int {
	return &i
}

func outcome(name string, code *int, kind domain.ErrorKind, healthy bool) domain.CheckOutcome {
	return domain.CheckOutcome{
		Result: domain.ProbeResult{
			CheckName:  name,
			StatusCode: code,
			Latency:    40 * time.Millisecond,
			ErrorKind:  kind,
		},
		Healthy: healthy,
	}
}

func TestNewBoard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checkNames []string
		wantLen    int
	}{
		{
			name:       "nil check list",
			checkNames: nil,
			wantLen:    0,
		},
		{
			name:       "single check",
			checkNames: []string{"Homepage"},
			wantLen:    1,
		},
		{
			name:       "multiple checks",
			checkNames: []string{"Homepage", "API", "Courses"},
			wantLen:    3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := NewBoard(tc.checkNames)
			require.Len(t, b.statuses, tc.wantLen)

			for _, name := range tc.checkNames {
				status, err := b.Status(name)
				require.NoError(t, err)
				require.Equal(t, domain.HealthStatusUnknown, status.Status)
				require.Nil(t, status.Latency)
				require.Nil(t, status.LastChecked)
				require.Nil(t, status.LastSuccessful)
			}

			_, _, ok := b.Latest()
			require.False(t, ok)
		})
	}
}

func TestBoard_Status_NotTracked(t *testing.T) {
	t.Parallel()

	b := NewBoard([]string{"Homepage"})
	status, err := b.Status("API")
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrCheckNotTracked))
	require.Equal(t, domain.CheckStatus{}, status)
}

func TestBoard_List_Sorted(t *testing.T) {
	t.Parallel()

	b := NewBoard([]string{"Courses", "API", "Homepage"})
	list := b.List()

	require.Len(t, list, 3)
	require.Equal(t, "API", list[0].Name)
	require.Equal(t, "Courses", list[1].Name)
	require.Equal(t, "Homepage", list[2].Name)
}

func TestBoard_Publish(t *testing.T) {
	t.Parallel()

	b := NewBoard([]string{"Homepage", "API", "Courses"})
	first := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	b.Publish(domain.HealthVerdict{
		ID:        "cycle-1",
		Timestamp: first,
		Outcomes: []domain.CheckOutcome{
			outcome("Homepage", intPtr(200), domain.ErrorKindNone, true),
			outcome("API", intPtr(500), domain.ErrorKindNone, false),
			outcome("Courses", nil, domain.ErrorKindConnection, false),
			outcome("Untracked", intPtr(200), domain.ErrorKindNone, true),
		},
	}, domain.MonitorSnapshot{State: domain.StateUnhealthy, TotalEvaluations: 1})

	home, err := b.Status("Homepage")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusOK, home.Status)
	require.Equal(t, first, *home.LastChecked)
	require.Equal(t, first, *home.LastSuccessful)
	require.Equal(t, 40*time.Millisecond, *home.Latency)

	api, err := b.Status("API")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusUnexpected, api.Status)
	require.Equal(t, 500, *api.StatusCode)
	require.Nil(t, api.LastSuccessful)

	courses, err := b.Status("Courses")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusUnreachable, courses.Status)
	require.Nil(t, courses.Latency)

	_, err = b.Status("Untracked")
	require.Error(t, err)

	verdict, snapshot, ok := b.Latest()
	require.True(t, ok)
	require.Equal(t, "cycle-1", verdict.ID)
	require.Equal(t, domain.StateUnhealthy, snapshot.State)

	// LastSuccessful is preserved when a later cycle fails.
	second := first.Add(time.Minute)
	b.Publish(domain.HealthVerdict{
		ID:        "cycle-2",
		Timestamp: second,
		Outcomes: []domain.CheckOutcome{
			outcome("Homepage", nil, domain.ErrorKindTimeout, false),
		},
	}, domain.MonitorSnapshot{State: domain.StateUnhealthy, TotalEvaluations: 2})

	home, err = b.Status("Homepage")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusTimeout, home.Status)
	require.Equal(t, second, *home.LastChecked)
	require.Equal(t, first, *home.LastSuccessful, "LastSuccessful should be preserved")
	require.NotNil(t, home.Latency)
}

func TestBoard_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	b := NewBoard([]string{"check1", "check2", "check3"})
	const numGoroutines = 50
	const numOperations = 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				name := fmt.Sprintf("check%d", (id%3)+1)

				switch j % 3 {
				case 0:
					b.Publish(domain.HealthVerdict{
						Timestamp: time.Now(),
						Outcomes:  []domain.CheckOutcome{outcome(name, intPtr(200), domain.ErrorKindNone, true)},
					}, domain.MonitorSnapshot{})
				case 1:
					_, err := b.Status(name)
					require.NoError(t, err)
				case 2:
					require.Len(t, b.List(), 3)
				}
			}
		}(i)
	}

	wg.Wait()
}
