package impl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/mock"

	"nearby/config"
	"nearby/internal/domain/entity"
	"nearby/internal/domain/repository"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg
}

// mockMapLibrary is a testify mock of service.MapLibrary.
type mockMapLibrary struct {
	mock.Mock
}

func (m *mockMapLibrary) Loaded(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockMapLibrary) NewMap(opts service.MapOptions) (service.MapInstance, error) {
	args := m.Called(opts)
	instance, _ := args.Get(0).(service.MapInstance)

	return instance, args.Error(1)
}

func (m *mockMapLibrary) Tile(ctx context.Context, tile maptile.Tile) ([]byte, map[string]string, error) {
	args := m.Called(ctx, tile)
	data, _ := args.Get(0).([]byte)
	headers, _ := args.Get(1).(map[string]string)

	return data, headers, args.Error(2)
}

// fakeMap is an in-memory service.MapInstance.
type fakeMap struct {
	ready chan struct{}
	err   error

	mu        sync.Mutex
	camera    service.Camera
	markers   []*fakeMarker
	nextID    int
	removeErr error
	addErr    error
}

func newReadyMap() *fakeMap {
	m := &fakeMap{ready: make(chan struct{})}
	close(m.ready)

	return m
}

func (m *fakeMap) Ready() <-chan struct{} { return m.ready }

func (m *fakeMap) Err() error { return m.err }

func (m *fakeMap) AddMarker(at entity.Coordinate, label string, properties map[string]any) (service.Marker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return nil, m.addErr
	}
	m.nextID++
	marker := &fakeMarker{
		id:         "m" + strconv.Itoa(m.nextID),
		at:         at,
		label:      label,
		properties: properties,
		owner:      m,
		removeErr:  m.removeErr,
	}
	m.markers = append(m.markers, marker)

	return marker, nil
}

func (m *fakeMap) FlyTo(center entity.Coordinate, zoom float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.camera = service.Camera{Center: center, Zoom: zoom}
}

func (m *fakeMap) Camera() service.Camera {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.camera
}

func (m *fakeMap) Markers() []service.Marker {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]service.Marker, 0, len(m.markers))
	for _, marker := range m.markers {
		out = append(out, marker)
	}

	return out
}

type fakeMarker struct {
	id         string
	at         entity.Coordinate
	label      string
	properties map[string]any
	owner      *fakeMap
	removeErr  error
}

func (k *fakeMarker) ID() string                  { return k.id }
func (k *fakeMarker) Position() entity.Coordinate { return k.at }
func (k *fakeMarker) Label() string               { return k.label }
func (k *fakeMarker) Properties() map[string]any  { return k.properties }

func (k *fakeMarker) Remove() error {
	if k.removeErr != nil {
		return k.removeErr
	}

	k.owner.mu.Lock()
	defer k.owner.mu.Unlock()
	for i, marker := range k.owner.markers {
		if marker == k {
			k.owner.markers = append(k.owner.markers[:i], k.owner.markers[i+1:]...)

			break
		}
	}

	return nil
}

// mockGeolocator is a testify mock of service.Geolocator.
type mockGeolocator struct {
	mock.Mock
}

func (m *mockGeolocator) CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.Coordinate, error) {
	args := m.Called(ctx, opts)

	return args.Get(0).(entity.Coordinate), args.Error(1)
}

// reportingGeolocator answers position requests with whatever was last reported.
type reportingGeolocator struct {
	mu      sync.Mutex
	coord   *entity.Coordinate
	err     error
	pending bool
}

func (g *reportingGeolocator) CurrentPosition(_ context.Context, _ service.PositionOptions) (entity.Coordinate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return entity.Coordinate{}, g.err
	}
	if g.coord == nil {
		return entity.Coordinate{}, &service.PositionError{Code: service.PositionTimeout, Message: "Timeout expired"}
	}

	return *g.coord, nil
}

func (g *reportingGeolocator) ReportPosition(coord entity.Coordinate) error {
	if !coord.Valid() {
		return errors.New("invalid coordinate")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.coord = &coord
	g.err = nil

	return nil
}

func (g *reportingGeolocator) ReportError(code service.PositionErrorCode, message string) error {
	if !code.Valid() {
		return errors.New("invalid code")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = &service.PositionError{Code: code, Message: message}

	return nil
}

func (g *reportingGeolocator) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.pending
}

type staticGeolocatorFactory struct {
	geolocator service.Geolocator
}

func (f staticGeolocatorFactory) NewGeolocator() service.Geolocator { return f.geolocator }

// mockPlaceSearcher is a testify mock of service.PlaceSearcher.
type mockPlaceSearcher struct {
	mock.Mock
}

func (m *mockPlaceSearcher) SearchPOI(ctx context.Context, query service.POIQuery) ([]service.GeocodedFeature, error) {
	args := m.Called(ctx, query)
	features, _ := args.Get(0).([]service.GeocodedFeature)

	return features, args.Error(1)
}

// memoryStore is an in-memory repository.KeyValueStore.
type memoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
	putErr error
	puts   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return nil, repository.ErrKeyNotFound
	}

	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = append([]byte(nil), value...)
	s.puts++

	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

func (s *memoryStore) Close() error { return nil }

// mockShareTarget is a testify mock of service.ShareTarget.
type mockShareTarget struct {
	mock.Mock
}

func (m *mockShareTarget) CanShare(payload *service.SharePayload) bool {
	return m.Called(payload).Bool(0)
}

func (m *mockShareTarget) Share(ctx context.Context, payload *service.SharePayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockShareTarget) Close() error { return nil }

// mockFallbackPresenter is a testify mock of service.FallbackPresenter.
type mockFallbackPresenter struct {
	mock.Mock
}

func (m *mockFallbackPresenter) Present(ctx context.Context, page *service.FallbackPage, deviceToken string) (string, error) {
	args := m.Called(ctx, page, deviceToken)

	return args.String(0), args.Error(1)
}

func (m *mockFallbackPresenter) Open(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	page, _ := args.Get(0).([]byte)

	return page, args.Error(1)
}

func (m *mockFallbackPresenter) QRCode(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

// recordingIndicator records every SetLoading call.
type recordingIndicator struct {
	mu    sync.Mutex
	calls []bool
}

func (r *recordingIndicator) SetLoading(loading bool, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, loading)
}
