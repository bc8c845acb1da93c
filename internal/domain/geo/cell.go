// Package geo provides the pure geometry used by the realtime fan-out: grid cells at
// several resolutions, cell enumeration over points and bounding boxes, and distances.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Resolution is the side of a grid cell in degrees.
type Resolution float64

// Standard grid resolutions, fine to coarse.
const (
	ResolutionFine     Resolution = 0.001
	ResolutionStreet   Resolution = 0.01
	ResolutionDistrict Resolution = 0.05
	ResolutionRegion   Resolution = 0.1
)

// broadcastBufferDegrees is the half-width of the square around a listing that is
// announced to cell subscribers at every resolution.
const broadcastBufferDegrees = 0.02

const gridEpsilon = 1e-9

// Resolutions lists the standard resolutions in broadcast order.
var Resolutions = []Resolution{ResolutionFine, ResolutionStreet, ResolutionDistrict, ResolutionRegion}

// CellKey identifies one grid cell by its floored south-west corner. It doubles as the
// broadcast room name of the cell.
type CellKey string

// ResolutionForZoom picks the grid resolution for a map zoom level.
func ResolutionForZoom(zoom float64) Resolution {
	switch {
	case zoom >= 16:
		return ResolutionFine
	case zoom >= 14:
		return ResolutionStreet
	case zoom >= 12:
		return ResolutionDistrict
	default:
		return ResolutionRegion
	}
}

// CellOf returns the key of the cell containing p at resolution r.
func CellOf(p orb.Point, r Resolution) CellKey {
	return cellKey(cellIndex(p.Lat(), r), cellIndex(p.Lon(), r), r)
}

// CellsCoveringPoint returns the (2*ring+1)^2 cells of the square centred on the cell
// containing p, row by row from south-west to north-east.
func CellsCoveringPoint(p orb.Point, r Resolution, ring int) []CellKey {
	if ring < 0 {
		ring = 0
	}

	centerLat := cellIndex(p.Lat(), r)
	centerLng := cellIndex(p.Lon(), r)
	side := 2*ring + 1
	keys := make([]CellKey, 0, side*side)

	for i := -ring; i <= ring; i++ {
		for j := -ring; j <= ring; j++ {
			keys = append(keys, cellKey(centerLat+int64(i), centerLng+int64(j), r))
		}
	}

	return keys
}

// CellsCoveringBounds returns every cell intersecting b, iterating from the floor of
// south/west up to north/east inclusive. Bounds crossing the antimeridian (west > east)
// cover no cells.
func CellsCoveringBounds(b orb.Bound, r Resolution) []CellKey {
	rows, cols := boundsSpan(b, r)
	if rows == 0 || cols == 0 {
		return nil
	}

	firstLat := cellIndex(b.Bottom(), r)
	firstLng := cellIndex(b.Left(), r)
	keys := make([]CellKey, 0, rows*cols)

	for i := int64(0); i < int64(rows); i++ {
		for j := int64(0); j < int64(cols); j++ {
			keys = append(keys, cellKey(firstLat+i, firstLng+j, r))
		}
	}

	return keys
}

// CountCellsInBounds reports how many cells CellsCoveringBounds would return without
// allocating them.
func CountCellsInBounds(b orb.Bound, r Resolution) int {
	rows, cols := boundsSpan(b, r)

	return rows * cols
}

// BroadcastCells returns the deduplicated cells, across all standard resolutions, within
// a fixed buffer around p. A point announced to these cells reaches subscribers whatever
// zoom level they are viewing at.
func BroadcastCells(p orb.Point) []CellKey {
	seen := make(map[CellKey]struct{})
	keys := make([]CellKey, 0)

	for _, r := range Resolutions {
		ring := int(math.Ceil(broadcastBufferDegrees / float64(r)))
		for _, key := range CellsCoveringPoint(p, r, ring) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}

	return keys
}

// NewBound builds a bounding box from map viewport edges.
func NewBound(north, south, east, west float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{west, south},
		Max: orb.Point{east, north},
	}
}

func boundsSpan(b orb.Bound, r Resolution) (rows, cols int) {
	if b.Top() < b.Bottom() || b.Right() < b.Left() {
		return 0, 0
	}

	rows = int(cellIndex(b.Top(), r) - cellIndex(b.Bottom(), r) + 1)
	cols = int(cellIndex(b.Right(), r) - cellIndex(b.Left(), r) + 1)

	return rows, cols
}

// cellIndex floors v onto the grid. The epsilon keeps coordinates that sit exactly on a
// grid line (e.g. -0.14 at 0.01) from falling into the cell below through division noise.
func cellIndex(v float64, r Resolution) int64 {
	return int64(math.Floor(v/float64(r) + gridEpsilon))
}

func cellKey(latIdx, lngIdx int64, r Resolution) CellKey {
	lat := float64(latIdx) * float64(r)
	lng := float64(lngIdx) * float64(r)

	return CellKey(fmt.Sprintf("geo_%.3f_%.3f", normalizeZero(lat), normalizeZero(lng)))
}

// normalizeZero folds -0 into 0 so both render as "0.000".
func normalizeZero(v float64) float64 {
	if v == 0 {
		return 0
	}

	return v
}
