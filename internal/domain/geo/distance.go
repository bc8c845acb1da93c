package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DistanceMeters returns the great-circle distance between a and b in meters.
// ok is false when either point is absent.
func DistanceMeters(a, b *orb.Point) (meters float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}

	return orbgeo.DistanceHaversine(*a, *b), true
}

// DistanceText renders a distance the way notifications show it: whole meters below
// one kilometer, kilometers with one decimal above.
func DistanceText(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm away", int(math.Round(meters)))
	}

	return fmt.Sprintf("%.1fkm away", meters/1000)
}

// AreaID derives the identifier of a named geographic area from its centre and radius.
func AreaID(lat, lng, radius float64) string {
	return fmt.Sprintf("%.3f_%.3f_%d", lat, lng, int(radius))
}
