package main

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/monitoring"
	"github.com/sells-group/demography-cli/internal/store"
)

// initStore opens the configured store after validating the settings that
// mode needs. Connectivity faults are returned before any work starts.
func initStore(ctx context.Context, mode string) (store.Store, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		dsn, err := cfg.Store.DSN()
		if err != nil {
			return nil, eris.Wrap(err, "store")
		}
		st, err := store.NewPostgres(ctx, dsn, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openMigratedStore opens the store and applies pending migrations.
func openMigratedStore(ctx context.Context, mode string) (store.Store, error) {
	st, err := initStore(ctx, mode)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate")
	}
	zap.L().Debug("store ready", zap.String("driver", cfg.Store.Driver))
	return st, nil
}

var (
	metricsOnce sync.Once
	appMetrics  *monitoring.Metrics
)

// processMetrics returns the metrics registered with the default registry.
func processMetrics() *monitoring.Metrics {
	metricsOnce.Do(func() {
		appMetrics = monitoring.NewMetrics(prometheus.DefaultRegisterer)
	})
	return appMetrics
}

// newChecker builds the load-log alert checker from config.
func newChecker(st store.Store) *monitoring.Checker {
	m := cfg.Monitoring
	collector := monitoring.NewCollector(st, nil, time.Duration(m.StaleAfterMins)*time.Minute)
	return monitoring.NewChecker(collector, monitoring.NewAlerter(m), m)
}
