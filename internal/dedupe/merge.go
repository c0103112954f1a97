package dedupe

import (
	"strings"

	"github.com/wefrigerator/fridge-ingest/internal/model"
	"github.com/wefrigerator/fridge-ingest/internal/textutil"
)

// SourceMergeKey is the raw entry a merge records its provenance under.
const SourceMergeKey = "source_merge"

// SourceMerge records which providers contributed to a merged site.
type SourceMerge struct {
	Sources   []string     `json:"sources"`
	Conflicts *GeoConflict `json:"conflicts,omitempty"`
}

// GeoConflict records two contributing locations that disagree by more than
// the mismatch distance.
type GeoConflict struct {
	LocationA model.Location `json:"location_a"`
	LocationB model.Location `json:"location_b"`
	DistanceM float64        `json:"distance_m"`
}

// Merge combines existing site a with incoming site b. It is not
// commutative: identity, name ties, phone order and hours default to a.
// A merged location further apart than mismatchM sets the geo-mismatch flag.
func Merge(a, b *model.Site, mismatchM float64) model.Site {
	m := *a
	m.SiteID = "merged:" + a.SiteID + ":" + b.SiteID

	if len([]rune(b.Name)) > len([]rune(a.Name)) {
		m.Name = b.Name
	}

	if prefersIncomingGeometry(a, b) {
		m.Location = b.Location
		if b.Address.Street1 != "" {
			m.Address = b.Address
		}
	}

	if a.Website == "" {
		m.Website = b.Website
		m.WebsiteDomain = b.WebsiteDomain
	}

	m.Phones = unionPhones(a.Phones, b.Phones)

	if b.HasParsedHours() && !a.HasParsedHours() {
		m.Hours = b.Hours
	}

	distance := Distance(a, b)
	mismatch := distance > mismatchM
	m.Flags = model.Flags{
		AddressGeoMismatch: a.Flags.AddressGeoMismatch || b.Flags.AddressGeoMismatch || mismatch,
		UnparseableHours:   a.Flags.UnparseableHours || b.Flags.UnparseableHours,
		BrokenURL:          a.Flags.BrokenURL || b.Flags.BrokenURL,
		StaleRecord:        a.Flags.StaleRecord || b.Flags.StaleRecord,
		SparseRecord:       a.Flags.SparseRecord && b.Flags.SparseRecord,
	}

	sm := SourceMerge{Sources: []string{a.Source, b.Source}}
	if mismatch {
		sm.Conflicts = &GeoConflict{LocationA: a.Location, LocationB: b.Location, DistanceM: distance}
	}
	m.Raw = a.Raw.Clone()
	m.Raw[SourceMergeKey] = sm

	return m
}

// SourceMergeOf returns the merge provenance recorded on s, if any.
func SourceMergeOf(s *model.Site) (SourceMerge, bool) {
	sm, ok := s.Raw[SourceMergeKey].(SourceMerge)
	return sm, ok
}

// prefersIncomingGeometry reports whether b's OSM geometry should replace
// a's: either side must be a community fridge, and only b comes from OSM.
func prefersIncomingGeometry(a, b *model.Site) bool {
	fridge := a.SiteType == model.SiteCommunityFridge || b.SiteType == model.SiteCommunityFridge
	return fridge && isOSM(b) && !isOSM(a)
}

// isOSM matches any OpenStreetMap-derived source tag ("osm_overpass").
func isOSM(s *model.Site) bool {
	return strings.Contains(strings.ToLower(s.Source), "osm")
}

func unionPhones(a, b []model.Phone) []model.Phone {
	out := make([]model.Phone, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, p := range append(append([]model.Phone{}, a...), b...) {
		d := textutil.PhoneDigits(p.Number)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, p)
	}
	return out
}
