package geo

import (
	"math"
	"slices"
)

// cellsPerDegree sets the grid resolution: keys are (floor(lat*100), floor(lon*100)).
const cellsPerDegree = 100

const gridCellDegrees = 1.0 / cellsPerDegree

// metersPerDegree is the length of one degree of latitude on the haversine sphere.
const metersPerDegree = EarthRadiusMeters * math.Pi / 180

// CellKey identifies one grid cell.
type CellKey struct {
	Lat int
	Lon int
}

// KeyFor returns the cell containing the point.
func KeyFor(lat, lon float64) CellKey {
	return CellKey{
		Lat: int(math.Floor(lat * cellsPerDegree)),
		Lon: int(math.Floor(lon * cellsPerDegree)),
	}
}

// Grid buckets integer ids by cell so proximity searches only scan
// neighboring cells.
type Grid struct {
	cells map[CellKey][]int
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[CellKey][]int)}
}

// Insert adds id at the given point.
func (g *Grid) Insert(id int, lat, lon float64) {
	k := KeyFor(lat, lon)
	g.cells[k] = append(g.cells[k], id)
}

// Remove deletes id from the cell holding the given point.
func (g *Grid) Remove(id int, lat, lon float64) {
	k := KeyFor(lat, lon)
	ids := g.cells[k]
	for i, v := range ids {
		if v == id {
			g.cells[k] = slices.Delete(ids, i, i+1)
			break
		}
	}
	if len(g.cells[k]) == 0 {
		delete(g.cells, k)
	}
}

// Near returns, in ascending order, every id stored in a cell that could hold
// a point within radiusM meters of (lat, lon). The result is a superset of the
// true neighbors; callers still apply their own distance predicate.
func (g *Grid) Near(lat, lon, radiusM float64) []int {
	center := KeyFor(lat, lon)

	latRings := max(int(math.Ceil(radiusM/(metersPerDegree*gridCellDegrees))), 1)
	// Cells shrink toward the poles, so size the longitude rings at the
	// poleward edge of the searched band.
	poleward := math.Min(math.Abs(lat)+float64(latRings+1)*gridCellDegrees, 89.999)
	lonScale := math.Cos(poleward * math.Pi / 180)
	lonRings := max(int(math.Ceil(radiusM/(metersPerDegree*lonScale*gridCellDegrees))), 1)

	var out []int
	if span := (2*latRings + 1) * (2*lonRings + 1); span > len(g.cells) {
		for k, ids := range g.cells {
			if abs(k.Lat-center.Lat) <= latRings && abs(k.Lon-center.Lon) <= lonRings {
				out = append(out, ids...)
			}
		}
	} else {
		for dy := -latRings; dy <= latRings; dy++ {
			for dx := -lonRings; dx <= lonRings; dx++ {
				out = append(out, g.cells[CellKey{Lat: center.Lat + dy, Lon: center.Lon + dx}]...)
			}
		}
	}

	slices.Sort(out)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
