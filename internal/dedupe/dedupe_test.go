package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefrigerator/fridge-ingest/internal/model"
)

func TestDedupe_SameAddressNearby(t *testing.T) {
	addr := model.Address{Street1: "123 Main St", City: "Los Angeles", State: "CA", Zip: "90012"}
	a := site("lac-156:OBJECTID-1", "lac_charitable_food", "Alpha Pantry", 34.05, -118.25)
	a.Address = addr
	b := site("lac-156:OBJECTID-2", "lac_charitable_food", "Zeta Kitchen", 34.0501, -118.2501)
	b.Address = addr

	out, merged := Dedupe([]model.Site{a, b}, Options{ThresholdM: DefaultThresholdM})
	require.Len(t, out, 1)
	assert.Equal(t, 1, merged)
	assert.Equal(t, "merged:lac-156:OBJECTID-1:lac-156:OBJECTID-2", out[0].SiteID)
}

func TestDedupe_NameSimilarityDistance(t *testing.T) {
	la := site("la", "lac_charitable_food", "Community Fridge A", baseLat, baseLon)

	near := site("osm", "osm_overpass", "Community Fridge A", north(baseLat, 100), baseLon)
	out, merged := Dedupe([]model.Site{la, near}, Options{ThresholdM: DefaultThresholdM})
	require.Len(t, out, 1)
	assert.Equal(t, 1, merged)
	assert.False(t, out[0].Flags.AddressGeoMismatch)

	far := site("osm", "osm_overpass", "Community Fridge A", north(baseLat, 160), baseLon)
	out, merged = Dedupe([]model.Site{la, far}, Options{ThresholdM: DefaultThresholdM})
	assert.Len(t, out, 2)
	assert.Zero(t, merged)
}

func TestDedupe_PhoneOutsideThresholdDoesNotMerge(t *testing.T) {
	la := withPhones(site("la", "lac_charitable_food", "Community Fridge A", baseLat, baseLon), "(213) 555-1212")
	osm := withPhones(site("osm", "osm_overpass", "Community Fridge A", 34.052, -118.252), "(213) 555-1212")

	out, _ := Dedupe([]model.Site{la, osm}, Options{ThresholdM: DefaultThresholdM})
	assert.Len(t, out, 2)

	closer := withPhones(site("osm", "osm_overpass", "Other Name", north(baseLat, 120), baseLon), "(213) 555-1212")
	out, _ = Dedupe([]model.Site{la, closer}, Options{ThresholdM: DefaultThresholdM})
	require.Len(t, out, 1)
	assert.False(t, out[0].Flags.AddressGeoMismatch)
}

func TestDedupe_FirstMatchInInputOrder(t *testing.T) {
	a := site("a", "x", "Community Fridge", baseLat, baseLon)
	b := site("b", "x", "Community Fridge", north(baseLat, 300), baseLon)
	c := site("c", "x", "Community Fridge", north(baseLat, 100), baseLon)

	out, merged := Dedupe([]model.Site{a, b, c}, Options{ThresholdM: FridgeThresholdM * 2})
	require.Len(t, out, 2)
	assert.Equal(t, 1, merged)
	assert.Equal(t, "merged:a:c", out[0].SiteID)
	assert.Equal(t, "b", out[1].SiteID)
}

func TestDedupe_SkipsRepeatedIDs(t *testing.T) {
	a := site("a", "x", "Alpha Pantry", baseLat, baseLon)
	again := site("a", "x", "Zeta Kitchen", north(baseLat, 5000), baseLon)

	out, merged := Dedupe([]model.Site{a, again}, Options{})
	require.Len(t, out, 1)
	assert.Zero(t, merged)
	assert.Equal(t, "Alpha Pantry", out[0].Name)
}

func TestDedupe_CityPhoneSetAcrossTown(t *testing.T) {
	a := withPhones(site("a", "x", "Alpha Pantry", baseLat, baseLon), "(213) 555-1212")
	a.Address.City = "Los Angeles"
	b := withPhones(site("b", "x", "Zeta Kitchen", north(baseLat, 3000), baseLon), "213-555-1212")
	b.Address.City = "los angeles"

	out, merged := Dedupe([]model.Site{a, b}, Options{})
	require.Len(t, out, 1)
	assert.Equal(t, 1, merged)
	assert.True(t, out[0].Flags.AddressGeoMismatch)
}

func TestDedupe_ReindexesMovedLocation(t *testing.T) {
	la := site("la", "lac_charitable_food", "Community Fridge", baseLat, baseLon)
	la.SiteType = model.SiteCommunityFridge
	osm := site("osm", "osm_overpass", "Community Fridge", north(baseLat, 100), baseLon)
	next := site("next", "lac_charitable_food", "Community Fridge", north(baseLat, 210), baseLon)

	out, merged := Dedupe([]model.Site{la, osm, next}, Options{ThresholdM: DefaultThresholdM})
	require.Len(t, out, 1)
	assert.Equal(t, 2, merged)
	assert.Equal(t, osm.Location, out[0].Location)
	assert.Equal(t, "merged:merged:la:osm:next", out[0].SiteID)
}

func TestDedupe_IdempotentAfterBridgingMerge(t *testing.T) {
	a := withPhones(site("a", "x", "Alpha Pantry", baseLat, baseLon), "213-555-0001")
	c := withPhones(site("c", "x", "Zeta Kitchen", north(baseLat, 100), baseLon), "213-555-0002")
	b := withPhones(site("b", "x", "Mid Station", north(baseLat, 20), baseLon), "213-555-0001", "213-555-0002")

	out, merged := Dedupe([]model.Site{a, c, b}, Options{})
	require.Len(t, out, 1)
	assert.Equal(t, 2, merged)
	assert.Equal(t, "merged:merged:a:b:c", out[0].SiteID)

	again, mergedAgain := Dedupe(out, Options{})
	assert.Equal(t, out, again)
	assert.Zero(t, mergedAgain)
}

func TestDedupe_Idempotent(t *testing.T) {
	var sites []model.Site
	for i, name := range []string{"Alpha Pantry", "Beta Kitchen", "Gamma Fridge", "Alpha Pantry", "Delta Shelf"} {
		s := site(string(rune('a'+i)), "x", name, north(baseLat, float64(i*60)), baseLon)
		sites = append(sites, s)
	}

	first, _ := Dedupe(sites, Options{ThresholdM: FridgeThresholdM})
	second, merged := Dedupe(first, Options{ThresholdM: FridgeThresholdM})
	assert.Equal(t, first, second)
	assert.Zero(t, merged)
}

func TestDedupe_Empty(t *testing.T) {
	out, merged := Dedupe(nil, Options{})
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, merged)
}
