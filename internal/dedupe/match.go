// Package dedupe recognizes records that describe the same real-world site,
// merges them, and reconciles canonical site lists across providers.
package dedupe

import (
	"strings"

	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/model"
)

// Proximity thresholds in meters.
const (
	// DefaultThresholdM applies to agency-style feeds.
	DefaultThresholdM = 125.0
	// FridgeThresholdM applies to feeds dominated by community fridges.
	FridgeThresholdM = 75.0
	// DefaultMismatchM is the distance beyond which a merge flags an
	// address/geometry mismatch.
	DefaultMismatchM = 150.0
)

// NameSimilarityMin is the Dice similarity at which two nearby names are
// treated as the same site.
const NameSimilarityMin = 0.92

// AddressKey lowercases, trims, and collapses whitespace in street1, city,
// state, and zip, then joins the non-empty parts with "|".
func AddressKey(a model.Address) string {
	var parts []string
	for _, p := range []string{a.Street1, a.City, a.State, a.Zip} {
		p = strings.Join(strings.Fields(strings.ToLower(p)), " ")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "|")
}

// Distance returns the haversine distance between two sites in meters.
func Distance(a, b *model.Site) float64 {
	return geo.HaversineMeters(a.Location.Lat, a.Location.Lon, b.Location.Lat, b.Location.Lon)
}

// SameSite reports whether a and b share a non-empty address key and lie
// strictly closer than thresholdM.
func SameSite(a, b *model.Site, thresholdM float64) bool {
	key := AddressKey(a.Address)
	return key != "" && key == AddressKey(b.Address) && Distance(a, b) < thresholdM
}

// ProbableDuplicate reports whether a and b are within thresholdM and share
// a near-identical name or a phone number, or are in the same city with
// identical non-empty phone sets.
func ProbableDuplicate(a, b *model.Site, thresholdM float64) bool {
	d := Distance(a, b)

	if d <= thresholdM && geo.Similarity(a.Name, b.Name) >= NameSimilarityMin {
		return true
	}

	phonesA := a.PhoneDigitSet()
	phonesB := b.PhoneDigitSet()
	shared := 0
	for p := range phonesA {
		if _, ok := phonesB[p]; ok {
			shared++
		}
	}
	if shared >= 1 && d <= thresholdM {
		return true
	}

	return shared >= 1 && sameCity(a, b) && shared == len(phonesA) && len(phonesA) == len(phonesB)
}

// Duplicate is SameSite or ProbableDuplicate.
func Duplicate(a, b *model.Site, thresholdM float64) bool {
	return SameSite(a, b, thresholdM) || ProbableDuplicate(a, b, thresholdM)
}

func sameCity(a, b *model.Site) bool {
	return a.Address.City != "" && b.Address.City != "" && strings.EqualFold(a.Address.City, b.Address.City)
}

func cityKey(s *model.Site) string {
	return strings.ToLower(s.Address.City)
}
