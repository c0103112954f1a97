package sink

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// SQLite implements Store on a local database file, for development and
// single-node deployments.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Connection-scoped pragmas only hold with a single connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS external_source (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS external_place (
	id              INTEGER PRIMARY KEY,
	source_id       TEXT NOT NULL REFERENCES external_source(id),
	source_place_id TEXT NOT NULL,
	name            TEXT,
	address         TEXT,
	lat             REAL,
	lng             REAL,
	raw             TEXT,
	last_seen_at    TEXT,
	UNIQUE (source_id, source_place_id)
);

CREATE TABLE IF NOT EXISTS ingest_run (
	id           TEXT PRIMARY KEY,
	provider     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	upserted     INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_external_place_last_seen ON external_place(last_seen_at);
CREATE INDEX IF NOT EXISTS idx_ingest_run_provider ON ingest_run(provider, started_at);
`

// Migrate creates the schema and seeds the source registry.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	for _, name := range RegistrySources {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO external_source (id, name) VALUES (?, ?)`,
			uuid.New().String(), name,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed source %s", name)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) SourceID(ctx context.Context, tag string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM external_source WHERE name = ?`, tag,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", eris.Wrapf(ErrSourceNotFound, "sqlite: source %s", tag)
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: lookup source %s", tag)
	}
	return id, nil
}

const sqliteUpsert = `
INSERT INTO external_place (source_id, source_place_id, name, address, lat, lng, raw, last_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (source_id, source_place_id) DO UPDATE SET
	name = excluded.name,
	address = excluded.address,
	lat = excluded.lat,
	lng = excluded.lng,
	raw = excluded.raw,
	last_seen_at = excluded.last_seen_at`

// Upsert writes all rows in one transaction.
func (s *SQLite) Upsert(ctx context.Context, rows []PlaceRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx,
			r.SourceID, r.SourcePlaceID, r.Name, r.Address, r.Lat, r.Lng, string(r.Raw), r.LastSeenAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert %s", r.SourcePlaceID)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

func (s *SQLite) StartRun(ctx context.Context, provider string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_run (id, provider, status, started_at) VALUES (?, ?, ?, ?)`,
		id, provider, string(RunStatusRunning), textutil.FormatISO(startedAt),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: start run for %s", provider)
	}
	return id, nil
}

func (s *SQLite) CompleteRun(ctx context.Context, runID string, upserted int64, completedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_run SET status = ?, completed_at = ?, upserted = ? WHERE id = ?`,
		string(RunStatusComplete), textutil.FormatISO(completedAt), upserted, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLite) FailRun(ctx context.Context, runID string, runErr error, completedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_run SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(RunStatusFailed), textutil.FormatISO(completedAt), runError(runErr), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLite) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	where, args := filter.where(
		func(int) string { return "?" },
		func(t time.Time) any { return textutil.FormatISO(t) },
	)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, provider, status, started_at, completed_at, upserted, COALESCE(error, '')
		 FROM ingest_run`+where,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			status    string
			started   string
			completed sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Provider, &status, &started, &completed, &r.Upserted, &r.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = RunStatus(status)
		r.StartedAt, _ = textutil.ParseISO(started)
		if completed.Valid {
			if t, ok := textutil.ParseISO(completed.String); ok {
				r.CompletedAt = &t
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run not found: %s", runID)
	}
	return nil
}
