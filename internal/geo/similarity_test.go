package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Community Fridge A", "Community Fridge A", 1},
		{"case and padding", "Silver Lake Fridge ", "silver lake fridge", 1},
		{"empty left", "", "fridge", 0},
		{"empty right", "fridge", "", 0},
		{"single characters", "a", "b", 0},
		{"disjoint", "abc", "xyz", 0},
		{"night nacht", "night", "nacht", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_NearDuplicateNames(t *testing.T) {
	got := Similarity("Echo Park Community Fridge", "Echo Park Community Fridges")
	assert.GreaterOrEqual(t, got, 0.92)

	got = Similarity("Echo Park Community Fridge", "Highland Park Pantry")
	assert.Less(t, got, 0.92)
}

func TestSimilarity_RepeatedBigramsCountOnce(t *testing.T) {
	// "aaaa" has the single bigram set {aa}.
	assert.InDelta(t, 1.0, Similarity("aaaa", "aa"), 1e-9)
}
