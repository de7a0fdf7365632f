package board

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dduksang/deploymon/internal/contracts"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/errors"
)

var _ contracts.HealthBoard = (*Board)(nil)

// Board holds the latest published health of every tracked check.
// It is written by the runner once per cycle and read concurrently by the status API.
// NewBoard should be used to create instances of Board.
type Board struct {
	mu        sync.RWMutex
	statuses  map[string]domain.CheckStatus
	verdict   domain.HealthVerdict
	snapshot  domain.MonitorSnapshot
	published bool
}

// NewBoard creates a board tracking the given check names, each starting with an unknown status.
func NewBoard(checkNames []string) *Board {
	statuses := make(map[string]domain.CheckStatus, len(checkNames))
	for _, name := range checkNames {
		statuses[name] = domain.CheckStatus{Name: name, Status: domain.HealthStatusUnknown}
	}
	return &Board{
		statuses: statuses,
	}
}

// Status returns the health status for a single tracked check.
func (b *Board) Status(name string) (domain.CheckStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if status, ok := b.statuses[name]; ok {
		return status, nil
	}

	return domain.CheckStatus{}, fmt.Errorf("%w: %s", errors.ErrCheckNotTracked, name)
}

// List returns a copy of all known check statuses sorted by name.
func (b *Board) List() []domain.CheckStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	statuses := slices.Collect(maps.Values(b.statuses))
	slices.SortFunc(statuses, func(a, b domain.CheckStatus) int {
		return strings.Compare(a.Name, b.Name)
	})
	return statuses
}

// Publish records the outcome of an evaluation cycle.
// Each outcome's check time is the verdict timestamp, and LastSuccessful only moves forward for healthy outcomes.
// Outcomes for checks that are not tracked are ignored.
func (b *Board) Publish(verdict domain.HealthVerdict, snapshot domain.MonitorSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	checked := verdict.Timestamp.UTC()

	for _, o := range verdict.Outcomes {
		prev, exists := b.statuses[o.Result.CheckName]
		if !exists {
			continue
		}

		lastSuccessful := prev.LastSuccessful
		if o.Healthy {
			lastSuccessful = &checked
		}

		var latency *time.Duration
		if o.Result.StatusCode != nil || o.Result.ErrorKind == domain.ErrorKindTimeout {
			l := o.Result.Latency
			latency = &l
		}

		b.statuses[o.Result.CheckName] = domain.CheckStatus{
			Name:           o.Result.CheckName,
			Status:         o.Status(),
			StatusCode:     o.Result.StatusCode,
			Latency:        latency,
			Reason:         o.Reason,
			LastChecked:    &checked,
			LastSuccessful: lastSuccessful,
		}
	}

	b.verdict = verdict
	b.snapshot = snapshot
	b.published = true
}

// Latest returns the most recently published verdict and monitor state.
func (b *Board) Latest() (domain.HealthVerdict, domain.MonitorSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.verdict, b.snapshot, b.published
}
