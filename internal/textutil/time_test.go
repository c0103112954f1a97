package textutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochMillisToISO(t *testing.T) {
	assert.Equal(t, "2024-05-07T00:00:00.000Z", EpochMillisToISO("1715040000000"))
	assert.Equal(t, "2024-05-07T00:00:00.000Z", EpochMillisToISO("1.71504e+12"))
	assert.Equal(t, "", EpochMillisToISO("0"))
	assert.Equal(t, "", EpochMillisToISO(""))
	assert.Equal(t, "", EpochMillisToISO("yesterday"))
}

func TestFormatAndParseISO(t *testing.T) {
	ts := time.Date(2024, 8, 1, 12, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	s := FormatISO(ts)
	assert.Equal(t, "2024-08-01T19:30:00.000Z", s)

	parsed, ok := ParseISO(s)
	require.True(t, ok)
	assert.True(t, parsed.Equal(ts))

	parsed, ok = ParseISO("2023-01-15T08:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2023, parsed.Year())

	_, ok = ParseISO("not a date")
	assert.False(t, ok)
}

func TestShortHash(t *testing.T) {
	h := ShortHash("amenity=food_sharing|34.1000000|-118.3000000")
	assert.Len(t, h, 16)
	assert.Equal(t, h, ShortHash("amenity=food_sharing|34.1000000|-118.3000000"))
	assert.NotEqual(t, h, ShortHash("amenity=food_sharing|34.1000001|-118.3000000"))
}
