// Package provider adapts upstream location feeds into provider-neutral
// records. Each adapter owns its upstream wire shape, knows how to request
// the feed, and reports the traits the pipeline needs to process it.
package provider

import (
	"net/http"
	"time"

	"github.com/wefrigerator/fridge-ingest/internal/classify"
	"github.com/wefrigerator/fridge-ingest/internal/model"
)

// Registry tags for the supported upstreams. They match the external
// store's source registry rows.
const (
	TagArcGISLA = "lac_charitable_food"
	TagOverpass = "osm_overpass"
	TagFreedge  = "freedge"
)

// Request describes the single upstream call a run makes.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Traits are the per-provider knobs the pipeline reads.
type Traits struct {
	// Label is the human-readable upstream name used in messages.
	Label string
	// CountKey names the response field reporting the upstream feature count.
	CountKey string
	// DedupeThresholdM is the within-provider proximity threshold in meters.
	DedupeThresholdM float64
	Classifier       classify.Classifier
	// Optional providers recover from upstream failure with an empty,
	// successful run and a warning.
	Optional bool
	// ReportSites includes sites and org clusters in the run response.
	ReportSites bool
	// ReportFiltered includes the in-bounds count in the run response.
	ReportFiltered bool
}

// Batch is the result of parsing one payload.
type Batch struct {
	Records []model.Record
	// Total is the number of upstream features in the payload.
	Total int
	// Dropped counts features rejected for missing or invalid coordinates,
	// malformed shape, or falling outside the provider's bounds.
	Dropped int
}

// Provider adapts one upstream feed.
type Provider interface {
	// Name returns the registry tag (e.g., "osm_overpass").
	Name() string

	// Route returns the HTTP trigger path segment (e.g., "overpass").
	Route() string

	Traits() Traits

	// Request returns the upstream call to make.
	Request() Request

	// Parse decodes a payload into records. Malformed features are dropped;
	// an error means the payload as a whole could not be read.
	Parse(payload []byte, now time.Time) (*Batch, error)
}

func getRequest(url string, headers map[string]string) Request {
	return Request{Method: http.MethodGet, URL: url, Headers: headers}
}
