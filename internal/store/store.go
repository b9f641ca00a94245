// Package store persists observations, category labels and the load log.
package store

import (
	"context"
	"time"

	"github.com/sells-group/demography-cli/internal/model"
)

// LoadFilter specifies criteria for listing load log entries.
type LoadFilter struct {
	Year   int              `json:"year,omitempty"`
	Status model.LoadStatus `json:"status,omitempty"`
	Since  time.Time        `json:"since"` // started at or after; zero = no bound
	Limit  int              `json:"limit,omitempty"`
}

// Store defines the persistence interface for the loader and the dashboard.
type Store interface {
	// Observations. Appends never delete, update or deduplicate.
	AppendObservations(ctx context.Context, obs []model.Observation) (int64, error)
	Observations(ctx context.Context) ([]model.Observation, error)

	// Categories. Replace is a full replace in one transaction.
	ReplaceCategories(ctx context.Context, entries []model.CategoryEntry) error
	Categories(ctx context.Context) ([]model.CategoryEntry, error)

	// Load log
	StartLoad(ctx context.Context, year int, dataset string, at time.Time) (string, error)
	CompleteLoad(ctx context.Context, id string, rows int64, at time.Time) error
	FailLoad(ctx context.Context, id string, errMsg string, at time.Time) error
	ListLoads(ctx context.Context, filter LoadFilter) ([]model.LoadEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
