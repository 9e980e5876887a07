package usecase

import (
	"context"

	"nearby/internal/domain/entity"
)

// LoadingIndicator is the "loading" display of a search.
type LoadingIndicator interface {
	SetLoading(loading bool, text string)
}

// SearchUsecase finds points of interest near a position.
type SearchUsecase interface {
	// SearchNearbyPlaces returns places sorted by ascending distance from
	// coords. Empty category and non-positive limit use the defaults.
	SearchNearbyPlaces(ctx context.Context, indicator LoadingIndicator, coords *entity.Coordinate, category string, limit int) ([]entity.Place, error)
}
