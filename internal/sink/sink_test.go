package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

var seenAt = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func testSites() []model.Site {
	return []model.Site{
		{
			SiteID:   "osm-node:42",
			Name:     "Silver Lake Fridge",
			Address:  model.Address{Street1: "123 Main St", City: "Los Angeles", State: "CA", Zip: "90026"},
			Location: model.Location{Lat: 34.1, Lon: -118.3},
			Source:   "osm_overpass",
		},
		{
			SiteID:   "osm-node:43",
			Name:     "Echo Park Fridge",
			Address:  model.Address{City: "Los Angeles"},
			Location: model.Location{Lat: 34.07, Lon: -118.26},
			Source:   "osm_overpass",
		},
	}
}

func TestProject(t *testing.T) {
	rows, err := Project("src-1", testSites(), seenAt)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "src-1", r.SourceID)
	assert.Equal(t, "osm-node:42", r.SourcePlaceID)
	assert.Equal(t, "Silver Lake Fridge", r.Name)
	assert.Equal(t, "123 Main St, Los Angeles, CA, 90026", r.Address)
	assert.Equal(t, 34.1, r.Lat)
	assert.Equal(t, -118.3, r.Lng)
	assert.Equal(t, "2024-08-01T12:00:00.000Z", r.LastSeenAt)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(r.Raw, &raw))
	assert.Equal(t, "osm-node:42", raw["site_id"])

	assert.Equal(t, "Los Angeles", rows[1].Address)
}

func TestProject_Deterministic(t *testing.T) {
	a, err := Project("src-1", testSites(), seenAt)
	require.NoError(t, err)
	b, err := Project("src-1", testSites(), seenAt)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestProject_Empty(t *testing.T) {
	rows, err := Project("src-1", nil, seenAt)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"postgres complete", Config{Driver: "postgres", URL: "postgres://db", ServiceKey: "k"}, true},
		{"postgres default driver", Config{URL: "postgres://db", ServiceKey: "k"}, true},
		{"postgres missing key", Config{Driver: "postgres", URL: "postgres://db"}, false},
		{"postgres missing url", Config{Driver: "postgres", ServiceKey: "k"}, false},
		{"sqlite path", Config{Driver: "sqlite", URL: "fridge.db"}, true},
		{"sqlite missing path", Config{Driver: "sqlite"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Configured())
		})
	}
}

func TestOpen_NotConfigured(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres", URL: "postgres://db"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotConfigured))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", URL: "x", ServiceKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestRunFilter_Where(t *testing.T) {
	dollar := func(n int) string { return fmt.Sprintf("$%d", n) }
	since := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	passSince := func(t time.Time) any { return t }

	tests := []struct {
		name     string
		filter   RunFilter
		wantSQL  string
		wantArgs []any
	}{
		{"no filter", RunFilter{}, " ORDER BY started_at DESC LIMIT $1", []any{DefaultRunLimit}},
		{"status", RunFilter{Status: RunStatusFailed, Limit: 10},
			" WHERE status = $1 ORDER BY started_at DESC LIMIT $2", []any{"failed", 10}},
		{"all", RunFilter{Status: RunStatusComplete, Provider: "freedge", Since: since, Limit: 3},
			" WHERE status = $1 AND provider = $2 AND started_at >= $3 ORDER BY started_at DESC LIMIT $4",
			[]any{"complete", "freedge", since, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.where(dollar, passSince)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
