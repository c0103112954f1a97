// Package sink persists canonical sites to the external place store.
package sink

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// ErrSourceNotFound is returned by SourceID when the provider tag has no
// row in the source registry.
var ErrSourceNotFound = eris.New("sink: source not registered")

// ErrNotConfigured is returned by Open when the store url or key is absent.
var ErrNotConfigured = eris.New("sink: store not configured")

// PlaceColumns are the external_place columns written on upsert, in row order.
var PlaceColumns = []string{
	"source_id", "source_place_id", "name", "address", "lat", "lng", "raw", "last_seen_at",
}

// PlaceConflictKeys is the unique constraint upserts resolve against.
var PlaceConflictKeys = []string{"source_id", "source_place_id"}

// RegistrySources are the provider tags seeded into external_source.
var RegistrySources = []string{provider.TagOverpass, provider.TagArcGISLA, provider.TagFreedge}

// PlaceRow is one upsert record for the external_place table.
type PlaceRow struct {
	SourceID      string          `json:"source_id"`
	SourcePlaceID string          `json:"source_place_id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Lat           float64         `json:"lat"`
	Lng           float64         `json:"lng"`
	Raw           json.RawMessage `json:"raw"`
	LastSeenAt    string          `json:"last_seen_at"`
}

// Project converts canonical sites into upsert rows, one per site.
func Project(sourceID string, sites []model.Site, now time.Time) ([]PlaceRow, error) {
	seen := textutil.FormatISO(now)
	rows := make([]PlaceRow, 0, len(sites))
	for i := range sites {
		s := &sites[i]
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, eris.Wrapf(err, "sink: marshal site %s", s.SiteID)
		}
		rows = append(rows, PlaceRow{
			SourceID:      sourceID,
			SourcePlaceID: s.SiteID,
			Name:          s.Name,
			Address:       s.Address.Joined(),
			Lat:           s.Location.Lat,
			Lng:           s.Location.Lon,
			Raw:           raw,
			LastSeenAt:    seen,
		})
	}
	return rows, nil
}

// Sink is the write side a provider run needs.
type Sink interface {
	SourceID(ctx context.Context, tag string) (string, error)
	Upsert(ctx context.Context, rows []PlaceRow) (int64, error)
}

// RunStatus is the lifecycle state of an ingest_run row.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// DefaultRunLimit caps ListRuns when the filter sets no limit.
const DefaultRunLimit = 50

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   RunStatus
	Provider string
	Since    time.Time // zero means no lower bound on started_at
	Limit    int
}

// where renders the filter as a WHERE clause using placeholder(n) for the
// nth argument, followed by the ordering and LIMIT.
func (f RunFilter) where(placeholder func(n int) string, since func(time.Time) any) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, clause+" "+placeholder(len(args)))
	}
	if f.Status != "" {
		add("status =", string(f.Status))
	}
	if f.Provider != "" {
		add("provider =", f.Provider)
	}
	if !f.Since.IsZero() {
		add("started_at >=", since(f.Since))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	args = append(args, limit)

	var b strings.Builder
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}
	b.WriteString(" ORDER BY started_at DESC LIMIT ")
	b.WriteString(placeholder(len(args)))
	return b.String(), args
}

// Run is one row of the ingest_run log.
type Run struct {
	ID          string     `json:"id"`
	Provider    string     `json:"provider"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Upserted    int64      `json:"upserted"`
	Error       string     `json:"error,omitempty"`
}

// RunLog records provider runs.
type RunLog interface {
	StartRun(ctx context.Context, provider string, startedAt time.Time) (string, error)
	CompleteRun(ctx context.Context, runID string, upserted int64, completedAt time.Time) error
	FailRun(ctx context.Context, runID string, runErr error, completedAt time.Time) error
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
}

// Store is a full backend: sink, run log and schema lifecycle.
type Store interface {
	Sink
	RunLog
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and locates the backing store.
type Config struct {
	Driver     string // "postgres" or "sqlite"
	URL        string
	ServiceKey string
	MaxConns   int32
}

// Configured reports whether enough is set to open the store. Postgres
// needs both url and key; SQLite only a file path.
func (c Config) Configured() bool {
	if c.Driver == "sqlite" {
		return c.URL != ""
	}
	return c.URL != "" && c.ServiceKey != ""
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.URL)
	case "", "postgres":
		return NewPostgres(ctx, cfg)
	default:
		return nil, eris.Errorf("sink: unknown driver %q", cfg.Driver)
	}
}

func runError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)
