package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/demography-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS demography (
	year     INTEGER NOT NULL,
	state    TEXT NOT NULL,
	agegroup TEXT NOT NULL,
	race     TEXT NOT NULL,
	sex      TEXT NOT NULL,
	hisp     TEXT NOT NULL,
	pop      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_demography_year ON demography(year);

CREATE TABLE IF NOT EXISTS metadata_table (
	grp_category TEXT NOT NULL,
	grp_name     INTEGER NOT NULL,
	grp_desc     TEXT NOT NULL,
	UNIQUE (grp_category, grp_name)
);

CREATE TABLE IF NOT EXISTS load_log (
	id           TEXT PRIMARY KEY,
	year         INTEGER NOT NULL,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	rows_loaded  INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_load_log_year ON load_log(year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendObservations(ctx context.Context, obs []model.Observation) (int64, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin append")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO demography (year, state, agegroup, race, sex, hisp, pop) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare append")
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.Values()...); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert observation")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit append")
	}
	return int64(len(obs)), nil
}

func (s *SQLiteStore) Observations(ctx context.Context) ([]model.Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, state, agegroup, race, sex, hisp, pop FROM demography ORDER BY year, rowid`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query observations")
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.Year, &o.State, &o.AgeGroup, &o.Race, &o.Sex, &o.Hisp, &o.Pop); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate observations")
}

func (s *SQLiteStore) ReplaceCategories(ctx context.Context, entries []model.CategoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace categories")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM metadata_table`); err != nil {
		return eris.Wrap(err, "sqlite: clear categories")
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metadata_table (grp_category, grp_name, grp_desc) VALUES (?, ?, ?)`,
			string(e.Category), e.Code, e.Label,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert category %s/%d", e.Category, e.Code)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit categories")
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]model.CategoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grp_category, grp_name, grp_desc FROM metadata_table ORDER BY grp_category, grp_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query categories")
	}
	defer rows.Close()

	var out []model.CategoryEntry
	for rows.Next() {
		var e model.CategoryEntry
		var c string
		if err := rows.Scan(&c, &e.Code, &e.Label); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category")
		}
		e.Category = model.Category(c)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate categories")
}

func (s *SQLiteStore) StartLoad(ctx context.Context, year int, dataset string, at time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO load_log (id, year, dataset, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, year, dataset, string(model.LoadStatusRunning), at.UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: start load for %d", year)
	}
	return id, nil
}

func (s *SQLiteStore) CompleteLoad(ctx context.Context, id string, rows int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE load_log SET status = ?, completed_at = ?, rows_loaded = ? WHERE id = ?`,
		string(model.LoadStatusComplete), at.UTC(), rows, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete load %s", id)
	}
	return checkRowsAffected(res, "load", id)
}

func (s *SQLiteStore) FailLoad(ctx context.Context, id string, errMsg string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE load_log SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(model.LoadStatusFailed), at.UTC(), errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail load %s", id)
	}
	return checkRowsAffected(res, "load", id)
}

func (s *SQLiteStore) ListLoads(ctx context.Context, filter LoadFilter) ([]model.LoadEntry, error) {
	query, args := buildLoadQuery(filter, func(int) string { return "?" })

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list loads")
	}
	defer rows.Close()

	var out []model.LoadEntry
	for rows.Next() {
		var e model.LoadEntry
		var status string
		var completedAt sql.NullTime
		var errStr sql.NullString
		if err := rows.Scan(&e.ID, &e.Year, &e.Dataset, &status, &e.StartedAt, &completedAt, &e.Rows, &errStr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan load entry")
		}
		e.Status = model.LoadStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		e.Error = errStr.String
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate loads")
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", kind, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}
