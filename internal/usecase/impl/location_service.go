package impl

import (
	"context"
	"log/slog"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
)

// Location status texts.
const (
	StatusRequestingLocation  = "Requesting location..."
	StatusLocationAcquired    = "Location acquired"
	StatusLocationUnsupported = "Geolocation not supported"
	statusLocationErrorPrefix = "Location error: "
)

type locationService struct {
	opts      service.PositionOptions
	focusZoom float64
	logger    *slog.Logger
}

// NewLocationService creates the location provider
func NewLocationService(cfg *config.Config, logger *slog.Logger) usecase.LocationUsecase {
	return &locationService{
		opts: service.PositionOptions{
			HighAccuracy: cfg.Location.HighAccuracy,
			MaximumAge:   cfg.Location.MaximumAge,
			Timeout:      cfg.Location.Timeout,
		},
		focusZoom: cfg.MapLibrary.FocusZoom,
		logger:    logger,
	}
}

func (s *locationService) RequestLocation(ctx context.Context, sess *usecase.Session) (*entity.Coordinate, error) {
	ctx = deliverycontext.WithSession(ctx, sess.ID, s.logger)
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	sess.SetStatus(StatusRequestingLocation)

	geolocator := sess.Geolocator()
	if geolocator == nil {
		sess.SetStatus(StatusLocationUnsupported)

		return nil, domainerrors.ErrLocationUnsupported
	}

	coord, err := geolocator.CurrentPosition(ctx, s.opts)
	if err != nil {
		var posErr *service.PositionError
		if !errors.As(err, &posErr) {
			sess.SetStatus(statusLocationErrorPrefix + err.Error())

			return nil, err
		}

		sess.SetStatus(statusLocationErrorPrefix + posErr.Error())
		logger.Warn("Location request failed", slog.Int("code", int(posErr.Code)), slog.String("reason", posErr.Error()))

		switch posErr.Code {
		case service.PositionPermissionDenied:
			return nil, domainerrors.ErrLocationDenied.WithDetails(posErr.Error())
		case service.PositionTimeout:
			return nil, domainerrors.ErrLocationTimeout.WithDetails(posErr.Error())
		default:
			return nil, domainerrors.ErrLocationFailure.WithDetails(posErr.Error())
		}
	}

	sess.SetLocation(coord)
	sess.SetStatus(StatusLocationAcquired)
	sess.Map().CenterOn(&coord, s.focusZoom)

	logger.Debug("Location acquired", slog.Float64("latitude", coord.Latitude), slog.Float64("longitude", coord.Longitude))

	return &coord, nil
}
