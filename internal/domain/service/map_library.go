package service

import (
	"context"

	"nearby/internal/domain/entity"
	"nearby/internal/errors"

	"github.com/paulmach/orb/maptile"
)

// ErrTileNotFound is returned by MapLibrary.Tile for tiles outside the archive.
var ErrTileNotFound = errors.New("tile not found")

// MapOptions are the constructor arguments of a map instance.
type MapOptions struct {
	Container string
	Style     string
	Center    entity.Coordinate
	Zoom      float64
}

// Camera is the current view of a map instance.
type Camera struct {
	Center entity.Coordinate `json:"center"`
	Zoom   float64           `json:"zoom"`
}

// MapLibrary is an externally provided mapping library that becomes
// available at an unpredictable time, or never.
type MapLibrary interface {
	// Loaded reports whether the library's entry point is present.
	Loaded(ctx context.Context) bool

	// NewMap constructs a map instance. Only valid once Loaded is true.
	NewMap(opts MapOptions) (MapInstance, error)

	// Tile returns the encoded tile and its response headers.
	Tile(ctx context.Context, tile maptile.Tile) ([]byte, map[string]string, error)
}

// MapInstance is one map bound to a container.
type MapInstance interface {
	// Ready is closed once the map has finished loading.
	Ready() <-chan struct{}

	// Err returns the load failure after Ready is closed, nil on success.
	Err() error

	// AddMarker places a marker with a popup label.
	AddMarker(at entity.Coordinate, label string, properties map[string]any) (Marker, error)

	// FlyTo moves the camera.
	FlyTo(center entity.Coordinate, zoom float64)

	// Camera returns the current camera.
	Camera() Camera

	// Markers returns the markers currently placed.
	Markers() []Marker
}

// Marker is a placed map marker.
type Marker interface {
	ID() string
	Position() entity.Coordinate
	Label() string
	Properties() map[string]any
	Remove() error
}
