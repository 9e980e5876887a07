package service

import (
	"context"

	"nearby/internal/domain/entity"
)

// POIQuery is one point-of-interest lookup biased toward a position.
type POIQuery struct {
	Proximity entity.Coordinate
	Text      string
	Limit     int
}

// GeocodedFeature is a raw point-of-interest result from the geocoding service.
type GeocodedFeature struct {
	ID      string
	Name    string
	Address string
	Center  entity.Coordinate
}

// PlaceSearcher issues point-of-interest queries against a geocoding service.
// A non-success answer is reported as *errors.PlacesAPIError.
type PlaceSearcher interface {
	SearchPOI(ctx context.Context, query POIQuery) ([]GeocodedFeature, error)
}
