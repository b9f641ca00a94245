package monitoring

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/model"
	"github.com/sells-group/demography-cli/internal/store"
)

// Snapshot holds a point-in-time view of recent load activity.
type Snapshot struct {
	Total        int     `json:"total"`
	Complete     int     `json:"complete"`
	Failed       int     `json:"failed"`
	Running      int     `json:"running"`
	StaleRunning int     `json:"stale_running"`
	FailRate     float64 `json:"fail_rate"`
	RowsLoaded   int64   `json:"rows_loaded"`
	FailedYears  []int   `json:"failed_years,omitempty"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// LoadLister abstracts the load log query used by the collector.
type LoadLister interface {
	ListLoads(ctx context.Context, filter store.LoadFilter) ([]model.LoadEntry, error)
}

// Collector gathers load-log statistics.
type Collector struct {
	loads      LoadLister
	clock      clockwork.Clock
	staleAfter time.Duration
}

// NewCollector creates a collector. Running loads older than staleAfter are
// counted as stale; zero disables the check.
func NewCollector(loads LoadLister, clock clockwork.Clock, staleAfter time.Duration) *Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Collector{loads: loads, clock: clock, staleAfter: staleAfter}
}

// Collect summarizes loads started within the lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	now := c.clock.Now().UTC()
	snap := &Snapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	entries, err := c.loads.ListLoads(ctx, store.LoadFilter{Since: cutoff})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list loads")
	}

	failedYears := make(map[int]bool)
	for _, e := range entries {
		snap.Total++
		switch e.Status {
		case model.LoadStatusComplete:
			snap.Complete++
			snap.RowsLoaded += e.Rows
		case model.LoadStatusFailed:
			snap.Failed++
			failedYears[e.Year] = true
		case model.LoadStatusRunning:
			snap.Running++
			if c.staleAfter > 0 && now.Sub(e.StartedAt) > c.staleAfter {
				snap.StaleRunning++
			}
		}
	}

	if finished := snap.Complete + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	for y := range failedYears {
		snap.FailedYears = append(snap.FailedYears, y)
	}
	sort.Ints(snap.FailedYears)

	return snap, nil
}
