package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefrigerator/fridge-ingest/internal/config"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.Bounds = config.BoundsConfig{MinLat: 33.7, MaxLat: 34.3, MinLng: -118.7, MaxLng: -118.1}
	c.Dedupe = config.DedupeConfig{FridgeThresholdM: 75, DefaultThresholdM: 125, MismatchM: 150}
	return c
}

func TestBuildRegistry(t *testing.T) {
	c := testConfig()
	c.Providers.OverpassURL = "https://overpass.example.test/api/interpreter"

	reg := buildRegistry(c)

	assert.Equal(t, []string{provider.TagArcGISLA, provider.TagOverpass, provider.TagFreedge}, reg.AllNames())

	la, err := reg.Lookup("arcgis-la")
	require.NoError(t, err)
	assert.Equal(t, provider.DefaultArcGISURL, la.Request().URL)
	assert.InDelta(t, 125, la.Traits().DedupeThresholdM, 1e-9)

	osm, err := reg.Lookup(provider.TagOverpass)
	require.NoError(t, err)
	assert.Equal(t, "https://overpass.example.test/api/interpreter", osm.Request().URL)
	assert.InDelta(t, 75, osm.Traits().DedupeThresholdM, 1e-9)
}

func TestFormatProviders(t *testing.T) {
	var buf bytes.Buffer
	formatProviders(&buf, buildRegistry(testConfig()).All())

	output := buf.String()
	assert.Contains(t, output, "TAG")
	assert.Contains(t, output, "COUNT_KEY")
	assert.Contains(t, output, "lac_charitable_food")
	assert.Contains(t, output, "arcgis-la")
	assert.Contains(t, output, "total_features")
	assert.Contains(t, output, "osm_overpass")
	assert.Contains(t, output, "total_elements")
	assert.Contains(t, output, "freedge")
	assert.Contains(t, output, "total_locations")
	assert.Contains(t, output, provider.DefaultFreedgeURL)
}
