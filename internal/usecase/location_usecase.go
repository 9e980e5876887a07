package usecase

import (
	"context"

	"nearby/internal/domain/entity"
)

// LocationUsecase acquires the position of a session.
type LocationUsecase interface {
	// RequestLocation asks the session geolocator exactly once. On success the
	// session location is replaced and the map is recentered.
	RequestLocation(ctx context.Context, sess *Session) (*entity.Coordinate, error)
}
