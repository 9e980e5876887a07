package geolocation

import (
	"log/slog"

	"nearby/config"
	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

type factory struct {
	newGeolocator func() service.Geolocator
}

func (f *factory) NewGeolocator() service.Geolocator {
	return f.newGeolocator()
}

// NewFactory creates the per-session geolocator factory named by location.provider.
func NewFactory(cfg *config.Config, logger *slog.Logger) (service.GeolocatorFactory, error) {
	location := cfg.Location

	switch location.Provider {
	case config.LocationProviderDevice:
		logger.Info("Using device geolocation")

		return &factory{newGeolocator: func() service.Geolocator { return NewDevice() }}, nil
	case config.LocationProviderFixed:
		coord := entity.NewCoordinate(location.Fixed.Latitude, location.Fixed.Longitude)
		if !coord.Valid() {
			return nil, errors.Errorf("invalid fixed location %f, %f", coord.Latitude, coord.Longitude)
		}
		if location.Fixed.Accuracy > 0 {
			coord = coord.WithAccuracy(location.Fixed.Accuracy)
		}
		logger.Info("Using fixed geolocation",
			slog.Float64("latitude", coord.Latitude),
			slog.Float64("longitude", coord.Longitude),
		)
		fixed := NewFixed(coord)

		return &factory{newGeolocator: func() service.Geolocator { return fixed }}, nil
	case config.LocationProviderNone:
		logger.Warn("Geolocation disabled, location requests will fail as unsupported")

		return &factory{newGeolocator: func() service.Geolocator { return nil }}, nil
	default:
		return nil, errors.Errorf("unsupported location provider %q", location.Provider)
	}
}
