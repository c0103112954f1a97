// Package geo provides the distance, similarity, and spatial index helpers
// used to compare sites from independent feeds.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the sphere radius used for haversine distances.
const EarthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinDLon*sinDLon
	if h > 1 {
		h = 1
	}

	return EarthRadiusMeters * 2 * math.Asin(math.Sqrt(h))
}

// FormatDistance renders meters as "N m" below one kilometer and "X.X km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int64(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
