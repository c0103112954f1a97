package dedupe

import (
	"slices"

	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/model"
)

// Conflict is a cross-provider merge whose contributing locations disagree.
type Conflict struct {
	SiteID    string         `json:"site_id"`
	Sources   []string       `json:"sources"`
	LocationA model.Location `json:"location_a"`
	LocationB model.Location `json:"location_b"`
	DistanceM float64        `json:"distance_m"`
}

// Reconciliation is the outcome of merging canonical site lists from
// several providers.
type Reconciliation struct {
	Sites     []model.Site
	Merged    int
	Conflicts []Conflict
}

// Reconcile merges per-provider canonical site lists, given in provider
// order. An incoming site is only compared with kept sites its own provider
// has not contributed to, so within-provider results are left as they are.
// The first provider's geometry wins unless the OSM precedence rule in Merge
// applies.
func Reconcile(lists [][]model.Site, opts Options) Reconciliation {
	opts = opts.withDefaults()

	idx := newIndex(opts.ThresholdM)
	sources := make(map[int][]string)
	res := Reconciliation{}

	for _, list := range lists {
		for i := range list {
			incoming := &list[i]
			target := idx.find(incoming, func(j int, existing *model.Site) bool {
				return !slices.Contains(sources[j], incoming.Source) && Duplicate(incoming, existing, opts.ThresholdM)
			})
			if target < 0 {
				if idx.add(*incoming) {
					sources[len(idx.sites)-1] = []string{incoming.Source}
				}
				continue
			}

			merged := Merge(&idx.sites[target], incoming, opts.MismatchM)
			idx.replace(target, merged)
			sources[target] = append(sources[target], incoming.Source)
			res.Merged++

			if sm, ok := SourceMergeOf(&merged); ok && sm.Conflicts != nil {
				res.Conflicts = append(res.Conflicts, Conflict{
					SiteID:    merged.SiteID,
					Sources:   sm.Sources,
					LocationA: sm.Conflicts.LocationA,
					LocationB: sm.Conflicts.LocationB,
					DistanceM: sm.Conflicts.DistanceM,
				})
			}
		}
	}

	res.Sites = idx.sites
	return res
}

// NearestMatch is the closest candidate to a site.
type NearestMatch struct {
	Site           *model.Site
	DistanceM      float64
	NameSimilarity float64
}

// Nearest returns the candidate closest to s. Ties keep the earlier
// candidate. It reports false when candidates is empty.
func Nearest(s *model.Site, candidates []model.Site) (NearestMatch, bool) {
	best := NearestMatch{DistanceM: -1}
	for i := range candidates {
		c := &candidates[i]
		d := geo.HaversineMeters(s.Location.Lat, s.Location.Lon, c.Location.Lat, c.Location.Lon)
		if best.Site == nil || d < best.DistanceM {
			best = NearestMatch{Site: c, DistanceM: d}
		}
	}
	if best.Site == nil {
		return NearestMatch{}, false
	}
	best.NameSimilarity = geo.Similarity(s.Name, best.Site.Name)
	return best, true
}
