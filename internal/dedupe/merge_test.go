package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

func TestMerge_Basics(t *testing.T) {
	a := withPhones(site("lac-156:OBJECTID-1", "lac_charitable_food", "Fridge", baseLat, baseLon), "(213) 555-1212")
	a.Website = "https://a.org"
	a.WebsiteDomain = "a.org"
	a.Raw = model.Raw{"OBJECTID": 1}
	b := withPhones(site("osm-node:2", "osm_overpass", "Fridge on Main", north(baseLat, 40), baseLon), "213-555-1212", "(310) 555-0000")
	b.Website = "https://b.org"
	b.WebsiteDomain = "b.org"

	m := Merge(&a, &b, DefaultMismatchM)

	assert.Equal(t, "merged:lac-156:OBJECTID-1:osm-node:2", m.SiteID)
	assert.Equal(t, "Fridge on Main", m.Name)
	assert.Equal(t, a.Location, m.Location, "no fridge on either side keeps the existing geometry")
	assert.Equal(t, "https://a.org", m.Website)
	assert.Equal(t, "a.org", m.WebsiteDomain)
	assert.Equal(t, []model.Phone{{Number: "(213) 555-1212"}, {Number: "(310) 555-0000"}}, m.Phones)
	assert.Equal(t, "lac_charitable_food", m.Source)

	sm, ok := SourceMergeOf(&m)
	require.True(t, ok)
	assert.Equal(t, []string{"lac_charitable_food", "osm_overpass"}, sm.Sources)
	assert.Nil(t, sm.Conflicts)
	assert.Equal(t, 1, m.Raw["OBJECTID"])
	_, touched := a.Raw[SourceMergeKey]
	assert.False(t, touched, "merge must not mutate the existing raw map")
}

func TestMerge_NameTieKeepsExisting(t *testing.T) {
	a := site("a", "x", "Abcd", baseLat, baseLon)
	b := site("b", "y", "Wxyz", baseLat, baseLon)
	assert.Equal(t, "Abcd", Merge(&a, &b, DefaultMismatchM).Name)
}

func TestMerge_WebsiteFallsBackToIncoming(t *testing.T) {
	a := site("a", "x", "A", baseLat, baseLon)
	b := site("b", "y", "B", baseLat, baseLon)
	b.Website = "https://b.org"
	b.WebsiteDomain = "b.org"

	m := Merge(&a, &b, DefaultMismatchM)
	assert.Equal(t, "https://b.org", m.Website)
	assert.Equal(t, "b.org", m.WebsiteDomain)
}

func TestMerge_Hours(t *testing.T) {
	parsed := []model.Hours{{Days: "Mon-Fri", Opens: "09:00", Closes: "17:00", Parsed: true}}
	unparsed := []model.Hours{{Days: "See notes", Notes: "call", Parsed: false}}

	tests := []struct {
		name  string
		a, b  []model.Hours
		wantB bool
	}{
		{"incoming parsed, existing not", unparsed, parsed, true},
		{"incoming parsed, existing empty", []model.Hours{}, parsed, true},
		{"both parsed keeps existing", parsed, []model.Hours{{Days: "24/7", Parsed: true}}, false},
		{"incoming unparsed keeps existing", unparsed, unparsed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := site("a", "x", "A", baseLat, baseLon)
			a.Hours = tt.a
			b := site("b", "y", "B", baseLat, baseLon)
			b.Hours = tt.b
			m := Merge(&a, &b, DefaultMismatchM)
			if tt.wantB {
				assert.Equal(t, tt.b, m.Hours)
			} else {
				assert.Equal(t, tt.a, m.Hours)
			}
		})
	}
}

func TestMerge_OSMPrecedenceForFridges(t *testing.T) {
	la := site("la", "lac_charitable_food", "Fridge", baseLat, baseLon)
	la.Address = model.Address{Street1: "1 County Way", City: "Los Angeles"}
	osm := site("osm", "osm_overpass", "Fridge", north(baseLat, 60), baseLon)
	osm.SiteType = model.SiteCommunityFridge
	osm.Address = model.Address{Street1: "3500 Sunset Blvd", State: "CA"}

	m := Merge(&la, &osm, DefaultMismatchM)
	assert.Equal(t, osm.Location, m.Location)
	assert.Equal(t, osm.Address, m.Address)

	osm.Address = model.Address{State: "CA"}
	m = Merge(&la, &osm, DefaultMismatchM)
	assert.Equal(t, osm.Location, m.Location)
	assert.Equal(t, la.Address, m.Address, "an OSM address without street1 is not preferred")

	m = Merge(&osm, &la, DefaultMismatchM)
	assert.Equal(t, osm.Location, m.Location, "existing OSM geometry stays")

	osm.SiteType = ""
	m = Merge(&la, &osm, DefaultMismatchM)
	assert.Equal(t, la.Location, m.Location, "precedence needs a community fridge on either side")
}

func TestMerge_GeoMismatch(t *testing.T) {
	a := site("a", "lac_charitable_food", "Fridge", baseLat, baseLon)
	b := site("b", "osm_overpass", "Fridge", north(baseLat, 200), baseLon)

	m := Merge(&a, &b, DefaultMismatchM)
	assert.True(t, m.Flags.AddressGeoMismatch)
	sm, ok := SourceMergeOf(&m)
	require.True(t, ok)
	require.NotNil(t, sm.Conflicts)
	assert.Equal(t, a.Location, sm.Conflicts.LocationA)
	assert.Equal(t, b.Location, sm.Conflicts.LocationB)
	assert.InDelta(t, 200, sm.Conflicts.DistanceM, 0.01)

	c := site("c", "osm_overpass", "Fridge", north(baseLat, 120), baseLon)
	m = Merge(&a, &c, DefaultMismatchM)
	assert.False(t, m.Flags.AddressGeoMismatch)
}

func TestMerge_FlagMonotonicity(t *testing.T) {
	flagsFrom := func(bits int) model.Flags {
		return model.Flags{
			AddressGeoMismatch: bits&1 != 0,
			UnparseableHours:   bits&2 != 0,
			BrokenURL:          bits&4 != 0,
			StaleRecord:        bits&8 != 0,
			SparseRecord:       bits&16 != 0,
		}
	}
	for i := range 32 {
		for j := range 32 {
			a := site("a", "x", "A", baseLat, baseLon)
			a.Flags = flagsFrom(i)
			b := site("b", "y", "B", north(baseLat, 10), baseLon)
			b.Flags = flagsFrom(j)

			m := Merge(&a, &b, DefaultMismatchM)
			assert.Equal(t, a.Flags.AddressGeoMismatch || b.Flags.AddressGeoMismatch, m.Flags.AddressGeoMismatch)
			assert.Equal(t, a.Flags.UnparseableHours || b.Flags.UnparseableHours, m.Flags.UnparseableHours)
			assert.Equal(t, a.Flags.BrokenURL || b.Flags.BrokenURL, m.Flags.BrokenURL)
			assert.Equal(t, a.Flags.StaleRecord || b.Flags.StaleRecord, m.Flags.StaleRecord)
			assert.Equal(t, a.Flags.SparseRecord && b.Flags.SparseRecord, m.Flags.SparseRecord)
		}
	}
}
