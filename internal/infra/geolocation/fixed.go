package geolocation

import (
	"context"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
)

// Fixed always answers with the same configured position.
type Fixed struct {
	coord entity.Coordinate
}

// NewFixed creates a geolocator pinned to coord.
func NewFixed(coord entity.Coordinate) *Fixed {
	return &Fixed{coord: coord}
}

// CurrentPosition implements service.Geolocator.
func (f *Fixed) CurrentPosition(ctx context.Context, _ service.PositionOptions) (entity.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return entity.Coordinate{}, err
	}

	return f.coord, nil
}
