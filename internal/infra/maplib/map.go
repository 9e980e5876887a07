package maplib

import (
	"context"
	"maps"
	"sync"
	"time"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/google/uuid"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

const (
	mapLoadTimeout = 30 * time.Second
	maxZoom        = 22
)

var errMarkerRemoved = errors.New("marker already removed")

type mapInstance struct {
	ready chan struct{}

	mu      sync.RWMutex
	err     error
	camera  service.Camera
	minZoom float64
	maxZoom float64
	markers []*marker
}

func newMapInstance(opts service.MapOptions) *mapInstance {
	return &mapInstance{
		ready:   make(chan struct{}),
		camera:  service.Camera{Center: opts.Center, Zoom: opts.Zoom},
		maxZoom: maxZoom,
	}
}

// load reads the archive header, restricts the camera to the archive's zoom
// range and then signals readiness.
func (m *mapInstance) load(readHeader func(context.Context) (pmtiles.HeaderV3, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), mapLoadTimeout)
	defer cancel()

	header, err := readHeader(ctx)

	m.mu.Lock()
	if err != nil {
		m.err = err
	} else {
		m.minZoom = float64(header.MinZoom)
		if header.MaxZoom > header.MinZoom {
			m.maxZoom = float64(header.MaxZoom)
		}
		m.camera.Zoom = m.clampZoom(m.camera.Zoom)
	}
	m.mu.Unlock()

	close(m.ready)
}

func (m *mapInstance) Ready() <-chan struct{} {
	return m.ready
}

func (m *mapInstance) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.err
}

func (m *mapInstance) AddMarker(at entity.Coordinate, label string, properties map[string]any) (service.Marker, error) {
	if !at.Valid() {
		return nil, errors.Errorf("invalid marker position %f, %f", at.Latitude, at.Longitude)
	}

	mk := &marker{
		id:         uuid.NewString(),
		position:   at,
		label:      label,
		properties: maps.Clone(properties),
		owner:      m,
	}

	m.mu.Lock()
	m.markers = append(m.markers, mk)
	m.mu.Unlock()

	return mk, nil
}

func (m *mapInstance) FlyTo(center entity.Coordinate, zoom float64) {
	if !center.Valid() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.camera = service.Camera{Center: center, Zoom: m.clampZoom(zoom)}
}

func (m *mapInstance) Camera() service.Camera {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.camera
}

func (m *mapInstance) Markers() []service.Marker {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]service.Marker, 0, len(m.markers))
	for _, mk := range m.markers {
		out = append(out, mk)
	}

	return out
}

// clampZoom must be called with mu held.
func (m *mapInstance) clampZoom(zoom float64) float64 {
	return min(max(zoom, m.minZoom), m.maxZoom)
}

func (m *mapInstance) removeMarker(target *marker) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, mk := range m.markers {
		if mk == target {
			m.markers = append(m.markers[:i], m.markers[i+1:]...)

			return nil
		}
	}

	return errMarkerRemoved
}

type marker struct {
	id         string
	position   entity.Coordinate
	label      string
	properties map[string]any
	owner      *mapInstance
}

func (mk *marker) ID() string                  { return mk.id }
func (mk *marker) Position() entity.Coordinate { return mk.position }
func (mk *marker) Label() string               { return mk.label }
func (mk *marker) Properties() map[string]any  { return maps.Clone(mk.properties) }

func (mk *marker) Remove() error {
	return mk.owner.removeMarker(mk)
}
