package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/db"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// PlaceTable is the upsert target.
const PlaceTable = "public.external_place"

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres opens a pool using cfg.ServiceKey as the password when the
// url carries none.
func NewPostgres(ctx context.Context, cfg Config) (*Postgres, error) {
	pool, err := db.Connect(ctx, db.Options{
		URL:        cfg.URL,
		ServiceKey: cfg.ServiceKey,
		MaxConns:   cfg.MaxConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &Postgres{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	return Migrate(ctx, p.pool)
}

func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

// SourceID looks up the registry id for a provider tag.
func (p *Postgres) SourceID(ctx context.Context, tag string) (string, error) {
	var id string
	err := p.pool.QueryRow(ctx,
		`SELECT id::text FROM external_source WHERE name = $1`,
		tag,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", eris.Wrapf(ErrSourceNotFound, "postgres: source %s", tag)
		}
		return "", eris.Wrapf(err, "postgres: lookup source %s", tag)
	}
	return id, nil
}

// Upsert writes rows in a single transaction keyed on (source_id, source_place_id).
func (p *Postgres) Upsert(ctx context.Context, rows []PlaceRow) (int64, error) {
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		sourceID, err := uuid.Parse(r.SourceID)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: source id %q", r.SourceID)
		}
		var seen any
		if t, ok := textutil.ParseISO(r.LastSeenAt); ok {
			seen = t
		}
		values = append(values, []any{
			sourceID, r.SourcePlaceID, r.Name, r.Address, r.Lat, r.Lng, []byte(r.Raw), seen,
		})
	}

	n, err := db.BulkUpsert(ctx, p.pool, db.UpsertConfig{
		Table:        PlaceTable,
		Columns:      PlaceColumns,
		ConflictKeys: PlaceConflictKeys,
	}, values)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert places")
	}
	return n, nil
}

// StartRun inserts a running ingest_run row and returns its id.
func (p *Postgres) StartRun(ctx context.Context, provider string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO ingest_run (id, provider, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, provider, string(RunStatusRunning), startedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: start run for %s", provider)
	}
	return id, nil
}

// CompleteRun marks a run complete with its upsert count.
func (p *Postgres) CompleteRun(ctx context.Context, runID string, upserted int64, completedAt time.Time) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE ingest_run SET status = $1, completed_at = $2, upserted = $3 WHERE id = $4`,
		string(RunStatusComplete), completedAt.UTC(), upserted, runID,
	)
	return eris.Wrapf(err, "postgres: complete run %s", runID)
}

// FailRun marks a run failed and stores the error message.
func (p *Postgres) FailRun(ctx context.Context, runID string, runErr error, completedAt time.Time) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE ingest_run SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
		string(RunStatusFailed), completedAt.UTC(), runError(runErr), runID,
	)
	return eris.Wrapf(err, "postgres: fail run %s", runID)
}

// ListRuns returns the most recent runs matching filter, newest first.
func (p *Postgres) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	where, args := filter.where(
		func(n int) string { return fmt.Sprintf("$%d", n) },
		func(t time.Time) any { return t.UTC() },
	)
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, provider, status, started_at, completed_at, upserted, COALESCE(error, '')
		 FROM ingest_run`+where,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r      Run
			status string
		)
		if err := rows.Scan(&r.ID, &r.Provider, &status, &r.StartedAt, &r.CompletedAt, &r.Upserted, &r.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
