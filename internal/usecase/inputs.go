package usecase

import (
	"beacon/internal/domain/geo"
	"beacon/internal/domain/realtime"

	"github.com/paulmach/orb"
)

// LatLng is a coordinate pair as sent by clients.
type LatLng struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Point converts the pair to an orb point.
func (l LatLng) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// PointOrNil converts an optional pair to an optional point.
func PointOrNil(l *LatLng) *orb.Point {
	if l == nil {
		return nil
	}
	p := l.Point()

	return &p
}

// ViewportInput is the visible map area reported by a client.
type ViewportInput struct {
	Bounds realtime.Bounds `json:"bounds"`
	Zoom   float64         `json:"zoom" validate:"gte=0,lte=24"`
	Center *LatLng         `json:"center,omitempty" validate:"omitempty"`
}

// Viewport converts the input into a session viewport carrying filters.
func (in ViewportInput) Viewport(filters realtime.MapFilters) *realtime.Viewport {
	return &realtime.Viewport{
		Bounds:  geo.NewBound(in.Bounds.North, in.Bounds.South, in.Bounds.East, in.Bounds.West),
		Zoom:    in.Zoom,
		Center:  PointOrNil(in.Center),
		Filters: filters,
	}
}
