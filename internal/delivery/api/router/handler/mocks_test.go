package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/mock"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockExplorer struct {
	mock.Mock
}

var _ usecase.ExplorerUsecase = (*mockExplorer)(nil)

func (m *mockExplorer) StartSession(ctx context.Context) (*usecase.SessionState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*usecase.SessionState)

	return state, args.Error(1)
}

func (m *mockExplorer) GetSession(ctx context.Context, sessionID string) (*usecase.SessionState, error) {
	args := m.Called(ctx, sessionID)
	state, _ := args.Get(0).(*usecase.SessionState)

	return state, args.Error(1)
}

func (m *mockExplorer) CloseSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockExplorer) RefreshLocation(ctx context.Context, sessionID string) (*usecase.SessionState, error) {
	args := m.Called(ctx, sessionID)
	state, _ := args.Get(0).(*usecase.SessionState)

	return state, args.Error(1)
}

func (m *mockExplorer) ReportPosition(ctx context.Context, sessionID string, coord entity.Coordinate) error {
	return m.Called(ctx, sessionID, coord).Error(0)
}

func (m *mockExplorer) ReportPositionError(ctx context.Context, sessionID string, code service.PositionErrorCode, message string) error {
	return m.Called(ctx, sessionID, code, message).Error(0)
}

func (m *mockExplorer) Search(ctx context.Context, sessionID, category string) (*usecase.SearchResult, error) {
	args := m.Called(ctx, sessionID, category)
	result, _ := args.Get(0).(*usecase.SearchResult)

	return result, args.Error(1)
}

func (m *mockExplorer) ListPlaces(ctx context.Context, sessionID string) ([]usecase.PlaceView, error) {
	args := m.Called(ctx, sessionID)
	places, _ := args.Get(0).([]usecase.PlaceView)

	return places, args.Error(1)
}

func (m *mockExplorer) SelectPlace(ctx context.Context, sessionID, placeID string) (*usecase.PlaceDetails, error) {
	args := m.Called(ctx, sessionID, placeID)
	details, _ := args.Get(0).(*usecase.PlaceDetails)

	return details, args.Error(1)
}

func (m *mockExplorer) ClosePlace(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockExplorer) AttachPhoto(ctx context.Context, sessionID, fileName string, data []byte) (*usecase.PlaceDetails, error) {
	args := m.Called(ctx, sessionID, fileName, data)
	details, _ := args.Get(0).(*usecase.PlaceDetails)

	return details, args.Error(1)
}

func (m *mockExplorer) PlacePhotos(ctx context.Context, sessionID, placeID string) ([]entity.StoredPhoto, error) {
	args := m.Called(ctx, sessionID, placeID)
	photos, _ := args.Get(0).([]entity.StoredPhoto)

	return photos, args.Error(1)
}

func (m *mockExplorer) ClearPhotos(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockExplorer) Share(ctx context.Context, sessionID string) (*usecase.ShareResult, error) {
	args := m.Called(ctx, sessionID)
	result, _ := args.Get(0).(*usecase.ShareResult)

	return result, args.Error(1)
}

func (m *mockExplorer) RegisterDevice(ctx context.Context, sessionID, deviceToken string) error {
	return m.Called(ctx, sessionID, deviceToken).Error(0)
}

func (m *mockExplorer) MapState(ctx context.Context, sessionID string) (*usecase.MapState, error) {
	args := m.Called(ctx, sessionID)
	state, _ := args.Get(0).(*usecase.MapState)

	return state, args.Error(1)
}

type mockShareUsecase struct {
	mock.Mock
}

func (m *mockShareUsecase) ShareCurrentPlace(ctx context.Context, sess *usecase.Session) (*usecase.ShareResult, error) {
	args := m.Called(ctx, sess)
	result, _ := args.Get(0).(*usecase.ShareResult)

	return result, args.Error(1)
}

func (m *mockShareUsecase) OpenSharePage(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	page, _ := args.Get(0).([]byte)

	return page, args.Error(1)
}

func (m *mockShareUsecase) ShareQRCode(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

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
