package geo

import (
	"github.com/twpayne/go-geom"
)

// BBox is an inclusive latitude/longitude rectangle.
type BBox struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// LosAngeles is the default filter box for the third-party fridge locator.
var LosAngeles = BBox{MinLat: 33.7, MaxLat: 34.3, MinLng: -118.7, MaxLng: -118.1}

// Bounds returns the box as go-geom bounds in XY (lng, lat) order.
func (b BBox) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.MinLng, b.MinLat, b.MaxLng, b.MaxLat)
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lng float64) bool {
	return b.Bounds().OverlapsPoint(geom.XY, geom.Coord{lng, lat})
}

// IsZero reports whether the box is unset.
func (b BBox) IsZero() bool {
	return b == BBox{}
}
