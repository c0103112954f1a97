package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_Joined(t *testing.T) {
	a := Address{Street1: "123 Main St", City: "Los Angeles", State: "CA", Zip: "90012"}
	assert.Equal(t, "123 Main St, Los Angeles, CA, 90012", a.Joined())
	assert.Equal(t, "", Address{}.Joined())

	a.Street2 = "Suite 4"
	assert.Equal(t, []string{"123 Main St", "Suite 4", "Los Angeles", "CA", "90012"}, a.Parts())
}

func TestLocation_Valid(t *testing.T) {
	assert.True(t, Location{Lat: 34.05, Lon: -118.25}.Valid())
	assert.False(t, Location{Lat: 0, Lon: -118.25}.Valid())
	assert.False(t, Location{Lat: math.NaN(), Lon: -118.25}.Valid())
	assert.False(t, Location{Lat: 34.05, Lon: math.Inf(1)}.Valid())
	assert.False(t, Location{Lat: 91, Lon: -118.25}.Valid())
}

func TestSite_PhoneDigitSet(t *testing.T) {
	s := Site{Phones: []Phone{
		{Number: "(213) 555-1212"},
		{Number: "213-555-1212", Label: "Info"},
		{Number: "()"},
	}}
	set := s.PhoneDigitSet()
	assert.Len(t, set, 1)
	assert.Contains(t, set, "2135551212")
}

func TestSite_HasParsedHours(t *testing.T) {
	s := Site{Hours: []Hours{{Days: "See notes", Notes: "call", Parsed: false}}}
	assert.False(t, s.HasParsedHours())
	s.Hours = append(s.Hours, Hours{Days: "24/7", Parsed: true})
	assert.True(t, s.HasParsedHours())
}

func TestServiceTag_Valid(t *testing.T) {
	assert.True(t, ServiceCommunityFridge.Valid())
	assert.False(t, ServiceTag("soup").Valid())
	assert.Len(t, AllServiceTags, 16)
	assert.True(t, PopAccessPermissive.Valid())
	assert.Len(t, AllPopulationTags, 9)
}

func TestSite_JSONShape(t *testing.T) {
	s := Site{
		SiteID:         "osm-node:42",
		Name:           "Silver Lake Fridge",
		ServiceTags:    []ServiceTag{ServiceCommunityFridge},
		PopulationTags: []PopulationTag{},
		Location:       Location{Lat: 34.1, Lon: -118.3},
		Hours:          []Hours{{Days: "24/7", Parsed: true}},
		Phones:         []Phone{},
		Source:         "osm_overpass",
		Raw:            Raw{"OBJECTID": 42},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Nil(t, m["post_id"])
	assert.NotContains(t, m, "site_type")
	assert.Equal(t, []any{"community_fridge"}, m["service_tags"])
	flags := m["flags"].(map[string]any)
	assert.Equal(t, false, flags["flag_address_geo_mismatch"])
}

func TestHours_JSONNullsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Hours{Days: "24/7", Parsed: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"days":"24/7","opens":null,"closes":null,"notes":null,"parsed":true}`, string(b))

	b, err = json.Marshal(Hours{Days: "Mon", Opens: "09:00", Closes: "17:00", Parsed: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"days":"Mon","opens":"09:00","closes":"17:00","notes":null,"parsed":true}`, string(b))

	var back Hours
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Hours{Days: "Mon", Opens: "09:00", Closes: "17:00", Parsed: true}, back)
}

func TestRaw_Clone(t *testing.T) {
	r := Raw{"a": 1}
	c := r.Clone()
	c["b"] = 2
	assert.NotContains(t, r, "b")
	assert.NotNil(t, Raw(nil).Clone())
}
