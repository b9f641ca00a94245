package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/demography-cli/internal/db"
	"github.com/sells-group/demography-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. The pool is
// pinged before returning so connectivity faults surface at startup.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migratePostgres(ctx, s.pool)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendObservations(ctx context.Context, obs []model.Observation) (int64, error) {
	rows := make([][]any, len(obs))
	for i, o := range obs {
		rows[i] = o.Values()
	}
	n, err := db.CopyFrom(ctx, s.pool, "demography", model.ObservationColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: append observations")
	}
	return n, nil
}

func (s *PostgresStore) Observations(ctx context.Context) ([]model.Observation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT year, state, agegroup, race, sex, hisp, pop FROM demography ORDER BY year`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query observations")
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.Year, &o.State, &o.AgeGroup, &o.Race, &o.Sex, &o.Hisp, &o.Pop); err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate observations")
}

func (s *PostgresStore) ReplaceCategories(ctx context.Context, entries []model.CategoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace categories")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM metadata_table`); err != nil {
		return eris.Wrap(err, "postgres: clear categories")
	}

	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{string(e.Category), e.Code, e.Label}
	}
	if _, err := db.CopyFrom(ctx, tx, "metadata_table", []string{"grp_category", "grp_name", "grp_desc"}, rows); err != nil {
		return eris.Wrap(err, "postgres: insert categories")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit categories")
	}
	return nil
}

func (s *PostgresStore) Categories(ctx context.Context) ([]model.CategoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT grp_category, grp_name, grp_desc FROM metadata_table ORDER BY grp_category, grp_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query categories")
	}
	defer rows.Close()

	var out []model.CategoryEntry
	for rows.Next() {
		var e model.CategoryEntry
		var c string
		if err := rows.Scan(&c, &e.Code, &e.Label); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category")
		}
		e.Category = model.Category(c)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate categories")
}

func (s *PostgresStore) StartLoad(ctx context.Context, year int, dataset string, at time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO load_log (id, year, dataset, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, year, dataset, string(model.LoadStatusRunning), at,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: start load for %d", year)
	}
	return id, nil
}

func (s *PostgresStore) CompleteLoad(ctx context.Context, id string, rows int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE load_log SET status = $1, completed_at = $2, rows_loaded = $3 WHERE id = $4`,
		string(model.LoadStatusComplete), at, rows, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete load %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: load %s not found", id)
	}
	return nil
}

func (s *PostgresStore) FailLoad(ctx context.Context, id string, errMsg string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE load_log SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
		string(model.LoadStatusFailed), at, errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail load %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: load %s not found", id)
	}
	return nil
}

func (s *PostgresStore) ListLoads(ctx context.Context, filter LoadFilter) ([]model.LoadEntry, error) {
	query, args := buildLoadQuery(filter, func(n int) string { return fmt.Sprintf("$%d", n) })

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list loads")
	}
	defer rows.Close()

	var out []model.LoadEntry
	for rows.Next() {
		var e model.LoadEntry
		var status string
		var errStr *string
		if err := rows.Scan(&e.ID, &e.Year, &e.Dataset, &status, &e.StartedAt, &e.CompletedAt, &e.Rows, &errStr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan load entry")
		}
		e.Status = model.LoadStatus(status)
		if errStr != nil {
			e.Error = *errStr
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate loads")
}

// buildLoadQuery renders the load_log listing with the driver's placeholder style.
func buildLoadQuery(filter LoadFilter, placeholder func(int) string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Year != 0 {
		args = append(args, filter.Year)
		where = append(where, "year = "+placeholder(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "status = "+placeholder(len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since.UTC())
		where = append(where, "started_at >= "+placeholder(len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, year, dataset, status, started_at, completed_at, rows_loaded, error FROM load_log`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY started_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(" LIMIT " + placeholder(len(args)))
	}
	return b.String(), args
}
