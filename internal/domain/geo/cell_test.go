package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var london = orb.Point{-0.1278, 51.5074}

func TestResolutionForZoom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		zoom float64
		want Resolution
	}{
		{zoom: 18, want: ResolutionFine},
		{zoom: 16, want: ResolutionFine},
		{zoom: 15.5, want: ResolutionStreet},
		{zoom: 14, want: ResolutionStreet},
		{zoom: 13, want: ResolutionDistrict},
		{zoom: 12, want: ResolutionDistrict},
		{zoom: 11.9, want: ResolutionRegion},
		{zoom: 3, want: ResolutionRegion},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolutionForZoom(tt.zoom), "zoom %v", tt.zoom)
	}
}

func TestCellOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CellKey("geo_51.507_-0.128"), CellOf(london, ResolutionFine))
	assert.Equal(t, CellKey("geo_51.500_-0.130"), CellOf(london, ResolutionStreet))
	assert.Equal(t, CellKey("geo_51.500_-0.150"), CellOf(london, ResolutionDistrict))
	assert.Equal(t, CellKey("geo_51.500_-0.200"), CellOf(london, ResolutionRegion))
	assert.Equal(t, CellKey("geo_0.000_0.000"), CellOf(orb.Point{0.0004, 0.0009}, ResolutionFine))
}

func TestCellsCoveringPoint_IncludesContainingCell(t *testing.T) {
	t.Parallel()

	points := []orb.Point{
		london,
		{121.5654, 25.0330},
		{-70.6693, -33.4489},
		{0, 0},
		{179.9999, 89.9999},
	}

	for _, p := range points {
		for _, r := range Resolutions {
			for ring := 0; ring <= 2; ring++ {
				cells := CellsCoveringPoint(p, r, ring)
				assert.Contains(t, cells, CellOf(p, r), "point %v resolution %v ring %d", p, r, ring)
				assert.Len(t, cells, (2*ring+1)*(2*ring+1))
			}
		}
	}
}

func TestCellsCoveringPoint_RingLayout(t *testing.T) {
	t.Parallel()

	cells := CellsCoveringPoint(london, ResolutionStreet, 1)

	assert.Equal(t, []CellKey{
		"geo_51.490_-0.140", "geo_51.490_-0.130", "geo_51.490_-0.120",
		"geo_51.500_-0.140", "geo_51.500_-0.130", "geo_51.500_-0.120",
		"geo_51.510_-0.140", "geo_51.510_-0.130", "geo_51.510_-0.120",
	}, cells)
}

func TestCellsCoveringPoint_IsDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		CellsCoveringPoint(london, ResolutionFine, 3),
		CellsCoveringPoint(london, ResolutionFine, 3),
	)
}

func TestCellsCoveringBounds(t *testing.T) {
	t.Parallel()

	bound := NewBound(51.52, 51.50, -0.12, -0.14)
	cells := CellsCoveringBounds(bound, ResolutionStreet)

	assert.Equal(t, []CellKey{
		"geo_51.500_-0.140", "geo_51.500_-0.130", "geo_51.500_-0.120",
		"geo_51.510_-0.140", "geo_51.510_-0.130", "geo_51.510_-0.120",
		"geo_51.520_-0.140", "geo_51.520_-0.130", "geo_51.520_-0.120",
	}, cells)
	assert.Equal(t, len(cells), CountCellsInBounds(bound, ResolutionStreet))
}

func TestCellsCoveringBounds_ContainsEveryInteriorPoint(t *testing.T) {
	t.Parallel()

	bound := NewBound(25.06, 25.01, 121.58, 121.50)

	for _, r := range Resolutions {
		cells := CellsCoveringBounds(bound, r)
		require.NotEmpty(t, cells)
		assert.Equal(t, len(cells), CountCellsInBounds(bound, r))

		for _, p := range []orb.Point{bound.Min, bound.Center(), {121.579, 25.059}} {
			assert.Contains(t, cells, CellOf(p, r), "resolution %v point %v", r, p)
		}
	}
}

func TestCellsCoveringBounds_Degenerate(t *testing.T) {
	t.Parallel()

	inverted := NewBound(51.50, 51.52, -0.12, -0.14)
	assert.Empty(t, CellsCoveringBounds(inverted, ResolutionStreet))
	assert.Zero(t, CountCellsInBounds(inverted, ResolutionStreet))

	antimeridian := NewBound(10, 9, -179.9, 179.9)
	assert.Empty(t, CellsCoveringBounds(antimeridian, ResolutionRegion))

	point := NewBound(51.5074, 51.5074, -0.1278, -0.1278)
	assert.Equal(t, []CellKey{CellOf(london, ResolutionFine)}, CellsCoveringBounds(point, ResolutionFine))
}

func TestBroadcastCells(t *testing.T) {
	t.Parallel()

	cells := BroadcastCells(london)

	seen := make(map[CellKey]struct{}, len(cells))
	for _, key := range cells {
		_, dup := seen[key]
		assert.False(t, dup, "duplicate cell %s", key)
		seen[key] = struct{}{}
	}

	for _, r := range Resolutions {
		assert.Contains(t, cells, CellOf(london, r))
	}

	// 41x41 fine + 5x5 street + 3x3 district + 3x3 region, minus keys shared between grids.
	assert.LessOrEqual(t, len(cells), 41*41+5*5+3*3+3*3)
	assert.Greater(t, len(cells), 41*41)
}
