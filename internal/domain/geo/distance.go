// Package geo holds the great-circle math used to rank places.
package geo

import (
	"math"

	"nearby/internal/domain/entity"
)

// EarthRadiusMeters is the mean Earth radius used for every distance.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine surface distance between a and b in meters.
// An unknown location on either side yields +Inf.
func Distance(a, b *entity.Coordinate) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// DistanceMeters is Distance rounded to whole meters. Callers must not pass
// nil coordinates; the infinite sentinel has no integer form.
func DistanceMeters(a, b entity.Coordinate) int {
	return int(math.Round(Distance(&a, &b)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
