package model

import "github.com/paulmach/orb"

// PointColumns splits an optional point into its latitude and longitude columns.
func PointColumns(p *orb.Point) (lat, lng *float64) {
	if p == nil {
		return nil, nil
	}
	latV, lngV := p.Lat(), p.Lon()

	return &latV, &lngV
}

// PointFromColumns joins latitude and longitude columns into a point. Either column being
// null yields nil.
func PointFromColumns(lat, lng *float64) *orb.Point {
	if lat == nil || lng == nil {
		return nil
	}

	return &orb.Point{*lng, *lat}
}
