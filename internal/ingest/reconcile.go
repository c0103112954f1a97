package ingest

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wefrigerator/fridge-ingest/internal/cluster"
	"github.com/wefrigerator/fridge-ingest/internal/dedupe"
	"github.com/wefrigerator/fridge-ingest/internal/fetcher"
	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
)

// ProviderSummary is one provider's contribution to a reconciliation.
type ProviderSummary struct {
	Provider string `json:"provider"`
	Total    int    `json:"total"`
	Sites    int    `json:"sites"`
	Warning  string `json:"warning,omitempty"`
}

// NearestReport pairs an unmerged site with the closest site from another
// provider.
type NearestReport struct {
	SiteID         string  `json:"site_id"`
	Name           string  `json:"name"`
	Source         string  `json:"source"`
	NearestSiteID  string  `json:"nearest_site_id"`
	NearestName    string  `json:"nearest_name"`
	NearestSource  string  `json:"nearest_source"`
	DistanceM      float64 `json:"distance_m"`
	Distance       string  `json:"distance"`
	NameSimilarity float64 `json:"name_similarity"`
}

// Reconciliation is the cross-provider view built by Reconcile. It is never
// written to the sink.
type Reconciliation struct {
	Providers []ProviderSummary  `json:"providers"`
	Merged    int                `json:"merged"`
	Conflicts []dedupe.Conflict  `json:"conflicts"`
	Nearest   []NearestReport    `json:"nearest"`
	Sites     []model.Site       `json:"sites"`
	Clusters  []model.OrgCluster `json:"org_clusters"`
}

// fridgeSources are the providers whose unmerged sites get a nearest-site
// report.
var fridgeSources = []string{provider.TagOverpass, provider.TagFreedge}

// Reconcile fetches and processes each provider concurrently, then merges
// the canonical lists across providers in the given order. A primary
// provider failing aborts the reconciliation; an optional one is skipped
// with a warning.
func (e *Engine) Reconcile(ctx context.Context, providers []provider.Provider) (*Reconciliation, error) {
	log := zap.L().With(zap.String("component", "ingest.reconcile"))
	now := e.clock.Now()

	lists := make([][]model.Site, len(providers))
	summaries := make([]ProviderSummary, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			traits := p.Traits()
			summaries[i] = ProviderSummary{Provider: p.Name()}

			payload, err := e.fetcher.Fetch(gctx, fetcher.Request(p.Request()))
			if err == nil {
				var out *Output
				out, err = Process(p, payload, now, e.opts)
				if err == nil {
					lists[i] = out.Sites
					summaries[i].Total = out.Total
					summaries[i].Sites = len(out.Sites)
					return nil
				}
			}
			if traits.Optional && gctx.Err() == nil {
				summaries[i].Warning = traits.Label + " API unavailable: " + upstreamReason(err)
				log.Warn("ingest: skipping optional provider", zap.String("provider", p.Name()), zap.Error(err))
				return nil
			}
			return runError(ErrUpstreamUnavailable, p.Name(), traits.Label+" API failed: "+upstreamReason(err), err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := dedupe.Reconcile(lists, dedupe.Options{MismatchM: e.opts.MismatchM})
	rec := &Reconciliation{
		Providers: summaries,
		Merged:    merged.Merged,
		Conflicts: merged.Conflicts,
		Nearest:   nearestReports(merged.Sites),
		Sites:     merged.Sites,
		Clusters:  cluster.ByOrg(merged.Sites),
	}
	if rec.Conflicts == nil {
		rec.Conflicts = []dedupe.Conflict{}
	}

	log.Info("ingest: reconciliation complete",
		zap.Int("sites", len(rec.Sites)),
		zap.Int("merged", rec.Merged),
		zap.Int("conflicts", len(rec.Conflicts)),
	)
	return rec, nil
}

// nearestReports finds, for every unmerged fridge site, the closest site
// contributed by a different provider.
func nearestReports(sites []model.Site) []NearestReport {
	reports := []NearestReport{}
	for i := range sites {
		s := &sites[i]
		if !slices.Contains(fridgeSources, s.Source) {
			continue
		}
		if mergedAcrossSources(s) {
			continue
		}

		var others []model.Site
		for j := range sites {
			if sites[j].Source != s.Source {
				others = append(others, sites[j])
			}
		}
		m, ok := dedupe.Nearest(s, others)
		if !ok {
			continue
		}
		reports = append(reports, NearestReport{
			SiteID:         s.SiteID,
			Name:           s.Name,
			Source:         s.Source,
			NearestSiteID:  m.Site.SiteID,
			NearestName:    m.Site.Name,
			NearestSource:  m.Site.Source,
			DistanceM:      m.DistanceM,
			Distance:       geo.FormatDistance(m.DistanceM),
			NameSimilarity: m.NameSimilarity,
		})
	}
	return reports
}

func mergedAcrossSources(s *model.Site) bool {
	sm, ok := dedupe.SourceMergeOf(s)
	if !ok {
		return false
	}
	for _, src := range sm.Sources {
		if src != s.Source {
			return true
		}
	}
	return false
}
