package impl

import (
	"log/slog"
	"sync"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/usecase"

	"github.com/paulmach/orb/geojson"
)

type mapPresenter struct {
	logger *slog.Logger

	mu       sync.Mutex
	instance service.MapInstance
	markers  []service.Marker
}

// NewMapPresenter creates a presenter with no map attached.
func NewMapPresenter(logger *slog.Logger) usecase.MapPresenter {
	return &mapPresenter{logger: logger}
}

// Attach binds a ready map. Attaching twice keeps the first map.
func (p *mapPresenter) Attach(instance service.MapInstance) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance == nil {
		p.instance = instance
	}
}

func (p *mapPresenter) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.instance != nil
}

func (p *mapPresenter) SetMarkers(places []entity.Place) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance == nil {
		return
	}

	for _, marker := range p.markers {
		if err := marker.Remove(); err != nil {
			p.logger.Debug("Failed to remove marker", slog.String("marker_id", marker.ID()), slog.Any("error", err))
		}
	}
	p.markers = p.markers[:0]

	for _, place := range places {
		marker, err := p.instance.AddMarker(place.Coordinates, place.Name, map[string]any{
			"place_id":        place.ID,
			"address":         place.Address,
			"distance_meters": place.DistanceMeters,
		})
		if err != nil {
			p.logger.Warn("Failed to add marker", slog.String("place_id", place.ID), slog.Any("error", err))

			continue
		}
		p.markers = append(p.markers, marker)
	}
}

func (p *mapPresenter) CenterOn(coords *entity.Coordinate, zoom float64) {
	if coords == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance == nil {
		return
	}
	p.instance.FlyTo(*coords, zoom)
}

func (p *mapPresenter) Markers() *geojson.FeatureCollection {
	p.mu.Lock()
	defer p.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, marker := range p.markers {
		feature := geojson.NewFeature(marker.Position().Point())
		for k, v := range marker.Properties() {
			feature.Properties[k] = v
		}
		feature.Properties["popup"] = marker.Label()
		feature.ID = marker.ID()
		fc.Append(feature)
	}

	return fc
}

func (p *mapPresenter) Camera() *service.Camera {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instance == nil {
		return nil
	}
	camera := p.instance.Camera()

	return &camera
}
