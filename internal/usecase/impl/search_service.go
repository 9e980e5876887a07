package impl

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/geo"
	"nearby/internal/domain/service"
	"nearby/internal/usecase"
)

const searchingText = "Searching..."

type searchService struct {
	searcher        service.PlaceSearcher
	defaultCategory string
	defaultLimit    int
	logger          *slog.Logger
}

// NewSearchService creates the place search client
func NewSearchService(searcher service.PlaceSearcher, cfg *config.Config, logger *slog.Logger) usecase.SearchUsecase {
	return &searchService{
		searcher:        searcher,
		defaultCategory: cfg.Search.DefaultCategory,
		defaultLimit:    cfg.Search.DefaultLimit,
		logger:          logger,
	}
}

func (s *searchService) SearchNearbyPlaces(ctx context.Context, indicator usecase.LoadingIndicator, coords *entity.Coordinate, category string, limit int) ([]entity.Place, error) {
	if coords == nil {
		return nil, domainerrors.ErrNoCoordinates
	}
	if category == "" {
		category = s.defaultCategory
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	if indicator != nil {
		indicator.SetLoading(true, searchingText)
		defer indicator.SetLoading(false, "")
	}

	features, err := s.searcher.SearchPOI(ctx, service.POIQuery{
		Proximity: *coords,
		Text:      category,
		Limit:     limit,
	})
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Place search failed",
			slog.String("category", category),
			slog.Any("error", err),
		)

		return nil, err
	}

	places := make([]entity.Place, 0, len(features))
	for _, f := range features {
		places = append(places, entity.Place{
			ID:             f.ID,
			Name:           f.Name,
			Address:        f.Address,
			Coordinates:    f.Center,
			DistanceMeters: geo.DistanceMeters(*coords, f.Center),
		})
	}

	slices.SortStableFunc(places, func(a, b entity.Place) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	return places, nil
}
