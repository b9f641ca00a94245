package dashboard

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/labels"
	"github.com/sells-group/demography-cli/internal/model"
)

// Source provides the persisted observations and category entries.
type Source interface {
	Observations(ctx context.Context) ([]model.Observation, error)
	Categories(ctx context.Context) ([]model.CategoryEntry, error)
}

// Data is the resolved dashboard dataset.
type Data struct {
	Resolver *labels.Resolver
	Rows     []labels.Row
}

// Cache loads Data on first use and keeps it for the life of the process.
// A failed load is not cached, so the next request retries.
type Cache struct {
	src Source

	mu   sync.Mutex
	data *Data
}

// NewCache creates an empty cache over src.
func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Get returns the cached data, loading it if needed.
func (c *Cache) Get(ctx context.Context) (*Data, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}

	entries, err := c.src.Categories(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load categories")
	}
	if len(entries) == 0 {
		zap.L().Warn("dashboard: metadata_table is empty, using built-in labels")
		entries = labels.DefaultEntries()
	}

	obs, err := c.src.Observations(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load observations")
	}

	r := labels.NewResolver(entries)
	c.data = &Data{Resolver: r, Rows: r.Resolve(obs)}

	zap.L().Info("dashboard: data cached",
		zap.Int("observations", len(obs)),
		zap.Int("categories", len(entries)),
	)
	return c.data, nil
}
