// Package observability holds the Prometheus metrics for provider runs.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the outcome label.
const (
	OutcomeSuccess = "success"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// Metrics holds the counters and histograms for ingest runs.
type Metrics struct {
	Runs             *prometheus.CounterVec   // labels: provider, outcome={success,warning,error}
	Sites            *prometheus.CounterVec   // labels: provider
	FeaturesDropped  *prometheus.CounterVec   // labels: provider
	DuplicatesMerged *prometheus.CounterVec   // labels: provider
	RunDuration      *prometheus.HistogramVec // labels: provider
}

// NewMetrics creates the run metrics and registers them with reg. A nil reg
// leaves them unregistered, which tests use to avoid collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge_ingest",
			Name:      "runs_total",
			Help:      "Provider runs by outcome.",
		}, []string{"provider", "outcome"}),
		Sites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge_ingest",
			Name:      "sites_total",
			Help:      "Canonical sites sent to the sink.",
		}, []string{"provider"}),
		FeaturesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge_ingest",
			Name:      "features_dropped_total",
			Help:      "Upstream features dropped for bad coordinates, shape or bounds.",
		}, []string{"provider"}),
		DuplicatesMerged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fridge_ingest",
			Name:      "duplicates_merged_total",
			Help:      "Sites merged away by within-provider deduplication.",
		}, []string{"provider"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fridge_ingest",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a provider run from fetch to upsert.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Runs,
			m.Sites,
			m.FeaturesDropped,
			m.DuplicatesMerged,
			m.RunDuration,
		)
	}
	return m
}

// RunStats is what a finished run reports.
type RunStats struct {
	Provider        string
	Outcome         string
	Sites           int
	Dropped         int
	Merged          int
	DurationSeconds float64
}

// Observe records one run. A nil receiver is a no-op.
func (m *Metrics) Observe(s RunStats) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(s.Provider, s.Outcome).Inc()
	m.Sites.WithLabelValues(s.Provider).Add(float64(s.Sites))
	m.FeaturesDropped.WithLabelValues(s.Provider).Add(float64(s.Dropped))
	m.DuplicatesMerged.WithLabelValues(s.Provider).Add(float64(s.Merged))
	m.RunDuration.WithLabelValues(s.Provider).Observe(s.DurationSeconds)
}
