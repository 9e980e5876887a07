package usecase

import (
	"context"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"

	"github.com/paulmach/orb/geojson"
)

// PlaceView is a place as listed in search results.
type PlaceView struct {
	entity.Place
	// Subtitle reads "address · N km".
	Subtitle string `json:"subtitle"`
}

// PlaceDetails is the detail view of the selected place.
type PlaceDetails struct {
	Place        entity.Place         `json:"place"`
	AddressText  string               `json:"address_text"`
	DistanceText string               `json:"distance_text"`
	Photos       []entity.StoredPhoto `json:"photos"`
	ShareEnabled bool                 `json:"share_enabled"`
}

// SessionState is a snapshot of everything a session displays.
type SessionState struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	Notice           string             `json:"notice,omitempty"`
	Location         *entity.Coordinate `json:"location,omitempty"`
	LocationText     string             `json:"location_text"`
	LocationPending  bool               `json:"location_pending"`
	Loading          bool               `json:"loading"`
	LoadingText      string             `json:"loading_text"`
	MapReady         bool               `json:"map_ready"`
	BootDone         bool               `json:"boot_done"`
	DeviceRegistered bool               `json:"device_registered"`
	Places           []PlaceView        `json:"places"`
	Selected         *PlaceDetails      `json:"selected,omitempty"`
}

// MapState is the map of a session: camera and markers.
type MapState struct {
	Ready   bool                       `json:"ready"`
	Status  string                     `json:"status"`
	Notice  string                     `json:"notice,omitempty"`
	Camera  *service.Camera            `json:"camera,omitempty"`
	Markers *geojson.FeatureCollection `json:"markers"`
}

// SearchResult is the outcome of one explorer search.
type SearchResult struct {
	Places []PlaceView `json:"places"`
	// Rendered is false when a newer search superseded this one.
	Rendered bool   `json:"rendered"`
	Status   string `json:"status"`
}

// ExplorerUsecase drives explorer sessions the way the page controls do.
type ExplorerUsecase interface {
	// StartSession creates a session and boots it in the background: map
	// first, then the location.
	StartSession(ctx context.Context) (*SessionState, error)
	GetSession(ctx context.Context, sessionID string) (*SessionState, error)
	CloseSession(ctx context.Context, sessionID string) error

	RefreshLocation(ctx context.Context, sessionID string) (*SessionState, error)
	ReportPosition(ctx context.Context, sessionID string, coord entity.Coordinate) error
	ReportPositionError(ctx context.Context, sessionID string, code service.PositionErrorCode, message string) error

	Search(ctx context.Context, sessionID, category string) (*SearchResult, error)
	ListPlaces(ctx context.Context, sessionID string) ([]PlaceView, error)
	SelectPlace(ctx context.Context, sessionID, placeID string) (*PlaceDetails, error)
	ClosePlace(ctx context.Context, sessionID string) error

	AttachPhoto(ctx context.Context, sessionID, fileName string, data []byte) (*PlaceDetails, error)
	PlacePhotos(ctx context.Context, sessionID, placeID string) ([]entity.StoredPhoto, error)
	ClearPhotos(ctx context.Context) error

	Share(ctx context.Context, sessionID string) (*ShareResult, error)
	RegisterDevice(ctx context.Context, sessionID, deviceToken string) error

	MapState(ctx context.Context, sessionID string) (*MapState, error)
}
