package dedupe

import (
	"slices"

	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/model"
)

// Options tune deduplication.
type Options struct {
	// ThresholdM is the proximity threshold in meters.
	ThresholdM float64
	// MismatchM is the merge distance that flags a geo mismatch.
	MismatchM float64
}

func (o Options) withDefaults() Options {
	if o.ThresholdM <= 0 {
		o.ThresholdM = DefaultThresholdM
	}
	if o.MismatchM <= 0 {
		o.MismatchM = DefaultMismatchM
	}
	return o
}

// Dedupe collapses duplicate sites. Each site is compared, in input order,
// against the sites kept so far; the first duplicate found absorbs it via
// Merge(existing, incoming), otherwise it is appended unless its id was
// already seen. Passes repeat until nothing changes, so Dedupe applied to
// its own output returns an equal sequence. It returns the kept sites and
// the number of merges performed.
func Dedupe(sites []model.Site, opts Options) ([]model.Site, int) {
	opts = opts.withDefaults()

	out := slices.Clone(sites)
	if out == nil {
		out = []model.Site{}
	}
	total := 0
	for {
		idx := newIndex(opts.ThresholdM)
		var merged, skipped int
		for i := range out {
			incoming := &out[i]
			target := idx.find(incoming, func(_ int, existing *model.Site) bool {
				return Duplicate(incoming, existing, opts.ThresholdM)
			})
			switch {
			case target >= 0:
				idx.replace(target, Merge(&idx.sites[target], incoming, opts.MismatchM))
				merged++
			case !idx.add(*incoming):
				skipped++
			}
		}
		total += merged
		out = idx.sites
		if merged == 0 && skipped == 0 {
			return out, total
		}
	}
}

// index holds the kept sites of one pass with a spatial grid over their
// locations and a bucket per city.
type index struct {
	thresholdM float64
	sites      []model.Site
	seen       map[string]bool
	grid       *geo.Grid
	cities     map[string][]int
}

func newIndex(thresholdM float64) *index {
	return &index{
		thresholdM: thresholdM,
		sites:      []model.Site{},
		seen:       make(map[string]bool),
		grid:       geo.NewGrid(),
		cities:     make(map[string][]int),
	}
}

// add appends s unless its id was already seen.
func (x *index) add(s model.Site) bool {
	if x.seen[s.SiteID] {
		return false
	}
	x.seen[s.SiteID] = true
	x.sites = append(x.sites, s)
	x.insert(len(x.sites) - 1)
	return true
}

// replace swaps the site at i for merged, re-indexing it since a merge may
// move its location or change its city.
func (x *index) replace(i int, merged model.Site) {
	x.remove(i)
	x.sites[i] = merged
	x.seen[merged.SiteID] = true
	x.insert(i)
}

func (x *index) insert(i int) {
	s := &x.sites[i]
	x.grid.Insert(i, s.Location.Lat, s.Location.Lon)
	if c := cityKey(s); c != "" {
		x.cities[c] = append(x.cities[c], i)
	}
}

func (x *index) remove(i int) {
	s := &x.sites[i]
	x.grid.Remove(i, s.Location.Lat, s.Location.Lon)
	if c := cityKey(s); c != "" {
		x.cities[c] = slices.DeleteFunc(x.cities[c], func(v int) bool { return v == i })
		if len(x.cities[c]) == 0 {
			delete(x.cities, c)
		}
	}
}

// find returns the lowest-indexed kept site for which match holds, or -1.
// Only sites within the threshold or in the same city are considered; every
// duplicate predicate requires one or the other.
func (x *index) find(s *model.Site, match func(i int, existing *model.Site) bool) int {
	candidates := x.grid.Near(s.Location.Lat, s.Location.Lon, x.thresholdM)
	if c := cityKey(s); c != "" {
		candidates = append(candidates, x.cities[c]...)
		slices.Sort(candidates)
		candidates = slices.Compact(candidates)
	}
	for _, i := range candidates {
		if match(i, &x.sites[i]) {
			return i
		}
	}
	return -1
}
