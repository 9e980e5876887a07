// Package entity contains the core business objects of the explorer.
package entity

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate is a point on Earth in degrees, optionally with the accuracy
// radius (meters) reported by the positioning source.
type Coordinate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// NewCoordinate builds a Coordinate without accuracy information.
func NewCoordinate(latitude, longitude float64) Coordinate {
	return Coordinate{Latitude: latitude, Longitude: longitude}
}

// CoordinateFromPoint converts an orb point ([lon, lat]) to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Point returns the coordinate as an orb point in [lon, lat] order.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// WithAccuracy returns a copy of c carrying the given accuracy.
func (c Coordinate) WithAccuracy(meters float64) Coordinate {
	c.Accuracy = &meters

	return c
}

// Valid reports whether the coordinate is finite and inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}

	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
