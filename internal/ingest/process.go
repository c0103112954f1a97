// Package ingest runs provider feeds through classification, scoring,
// deduplication and clustering, and writes the canonical sites to the sink.
package ingest

import (
	"cmp"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wefrigerator/fridge-ingest/internal/classify"
	"github.com/wefrigerator/fridge-ingest/internal/cluster"
	"github.com/wefrigerator/fridge-ingest/internal/dedupe"
	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
	"github.com/wefrigerator/fridge-ingest/internal/scorer"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// Options tune processing. Zero values fall back to the provider's traits
// and the package defaults.
type Options struct {
	ThresholdM float64
	MismatchM  float64
}

// Output is the in-memory result of processing one payload.
type Output struct {
	Sites    []model.Site
	Clusters []model.OrgCluster
	// Total is the upstream feature count.
	Total int
	// Kept is the number of records that survived parsing and bounds.
	Kept    int
	Dropped int
	// Merged is the number of within-provider duplicates absorbed.
	Merged int
}

// Process parses payload with p and derives the canonical sites and their
// org clusters. It performs no I/O; now is the only time source.
func Process(p provider.Provider, payload []byte, now time.Time, opts Options) (*Output, error) {
	batch, err := p.Parse(payload, now)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s payload", p.Name())
	}

	traits := p.Traits()
	classifier := traits.Classifier
	if classifier == nil {
		classifier = classify.Text{}
	}

	sites := make([]model.Site, 0, len(batch.Records))
	for i := range batch.Records {
		sites = append(sites, BuildSite(&batch.Records[i], classifier, now))
	}

	canonical, merged := dedupe.Dedupe(sites, dedupe.Options{
		ThresholdM: cmp.Or(opts.ThresholdM, traits.DedupeThresholdM),
		MismatchM:  opts.MismatchM,
	})

	return &Output{
		Sites:    canonical,
		Clusters: cluster.ByOrg(canonical),
		Total:    batch.Total,
		Kept:     len(batch.Records),
		Dropped:  batch.Dropped,
		Merged:   merged,
	}, nil
}

// BuildSite classifies rec and assembles a scored Site.
func BuildSite(rec *model.Record, c classify.Classifier, now time.Time) model.Site {
	d := c.Classify(rec, now)
	website := rec.Website()
	_, domain := textutil.NormalizeURL(website)

	s := model.Site{
		SiteID:          rec.SiteID,
		PostID:          rec.PostID,
		Name:            rec.Name,
		OrgRootName:     d.OrgRootName,
		OrgType:         d.OrgType,
		SiteType:        d.SiteType,
		ServiceTags:     nonNil(d.ServiceTags),
		PopulationTags:  nonNil(d.PopulationTags),
		AccessModel:     d.AccessModel,
		Description:     rec.Description,
		Address:         rec.Address,
		Location:        rec.Location,
		Hours:           nonNil(rec.Hours),
		Phones:          nonNil(rec.Phones),
		Website:         website,
		WebsiteDomain:   domain,
		Email:           rec.Email(),
		Source:          rec.Source,
		UpdatedAt:       rec.UpdatedAt,
		FreshnessBucket: d.Freshness,
		Raw:             rec.Raw.Clone(),
	}
	scorer.Apply(&s)
	return s
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
