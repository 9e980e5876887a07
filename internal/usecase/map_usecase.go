package usecase

import (
	"context"
	"time"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"

	"github.com/paulmach/orb/geojson"
)

// BootstrapOptions bounds the wait for the map library.
type BootstrapOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultBootstrapOptions are used for zero fields of BootstrapOptions.
var DefaultBootstrapOptions = BootstrapOptions{Interval: 150 * time.Millisecond, MaxAttempts: 40}

// MapBootstrapUsecase waits for the map library and creates the session map.
type MapBootstrapUsecase interface {
	// InitMapWhenReady returns once the map is ready, or fails with
	// ErrMapLibraryUnavailable or ErrMapInit.
	InitMapWhenReady(ctx context.Context, sess *Session, opts BootstrapOptions) error
}

// MapPresenter keeps markers and camera of one session map. Every call made
// before a ready map is attached is a no-op.
type MapPresenter interface {
	Attach(instance service.MapInstance)
	Ready() bool

	// SetMarkers replaces all markers with one marker per place.
	SetMarkers(places []entity.Place)

	CenterOn(coords *entity.Coordinate, zoom float64)

	// Markers returns the placed markers as a FeatureCollection.
	Markers() *geojson.FeatureCollection

	// Camera returns nil before the map is ready.
	Camera() *service.Camera
}
