package impl

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
	"nearby/internal/util"
)

// Explorer status texts.
const (
	StatusAllowLocation    = "Allow location or click Refresh"
	StatusNeedLocation     = "Need location to search"
	StatusSearchFailed     = "Search failed"
	StatusSelectPlaceFirst = "Select a place first"
)

type explorerService struct {
	registry  usecase.SessionRegistry
	mapBoot   usecase.MapBootstrapUsecase
	location  usecase.LocationUsecase
	search    usecase.SearchUsecase
	photos    usecase.PhotoUsecase
	share     usecase.ShareUsecase
	bootOpts  usecase.BootstrapOptions
	uiLimit   int
	placeZoom float64
	logger    *slog.Logger
}

// ExplorerServiceParams holds dependencies for ExplorerService, injected by Fx.
type ExplorerServiceParams struct {
	fx.In

	Registry usecase.SessionRegistry
	MapBoot  usecase.MapBootstrapUsecase
	Location usecase.LocationUsecase
	Search   usecase.SearchUsecase
	Photos   usecase.PhotoUsecase
	Share    usecase.ShareUsecase
	Config   *config.Config
	Logger   *slog.Logger
}

// NewExplorerService creates the explorer controller
func NewExplorerService(params ExplorerServiceParams) usecase.ExplorerUsecase {
	return &explorerService{
		registry: params.Registry,
		mapBoot:  params.MapBoot,
		location: params.Location,
		search:   params.Search,
		photos:   params.Photos,
		share:    params.Share,
		bootOpts: usecase.BootstrapOptions{
			Interval:    params.Config.MapLibrary.PollInterval,
			MaxAttempts: params.Config.MapLibrary.MaxAttempts,
		},
		uiLimit:   params.Config.Search.UILimit,
		placeZoom: params.Config.MapLibrary.PlaceZoom,
		logger:    params.Logger,
	}
}

func (s *explorerService) StartSession(ctx context.Context) (*usecase.SessionState, error) {
	sess, err := s.registry.Create(ctx)
	if err != nil {
		return nil, err
	}

	bootCtx := deliverycontext.WithRequestID(sess.Context(), deliverycontext.GetRequestIDFromContext(ctx))
	go s.boot(bootCtx, sess)

	return s.snapshot(ctx, sess), nil
}

// boot initializes the map, then asks for the location. A map failure does
// not prevent the location request.
func (s *explorerService) boot(ctx context.Context, sess *usecase.Session) {
	defer sess.MarkBootDone()

	ctx = deliverycontext.WithSession(ctx, sess.ID, s.logger)
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if err := s.mapBoot.InitMapWhenReady(ctx, sess, s.bootOpts); err != nil {
		logger.Warn("Map boot failed, requesting location anyway", slog.Any("error", err))
		if ctx.Err() != nil {
			return
		}
		_, _ = s.location.RequestLocation(ctx, sess)

		return
	}

	if _, err := s.location.RequestLocation(ctx, sess); err != nil {
		if ctx.Err() != nil {
			return
		}
		sess.SetStatus(StatusAllowLocation)
	}
}

func (s *explorerService) GetSession(ctx context.Context, sessionID string) (*usecase.SessionState, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.snapshot(ctx, sess), nil
}

func (s *explorerService) CloseSession(ctx context.Context, sessionID string) error {
	if _, err := s.registry.Get(ctx, sessionID); err != nil {
		return err
	}
	s.registry.Remove(sessionID)

	return nil
}

func (s *explorerService) RefreshLocation(ctx context.Context, sessionID string) (*usecase.SessionState, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.location.RequestLocation(ctx, sess); err != nil {
		return nil, err
	}

	return s.snapshot(ctx, sess), nil
}

func (s *explorerService) reporter(ctx context.Context, sessionID string) (service.PositionReporter, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reporter, ok := sess.Geolocator().(service.PositionReporter)
	if !ok {
		return nil, domainerrors.ErrLocationUnsupported.WithDetails("session position is not reported by the device")
	}

	return reporter, nil
}

func (s *explorerService) ReportPosition(ctx context.Context, sessionID string, coord entity.Coordinate) error {
	reporter, err := s.reporter(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := reporter.ReportPosition(coord); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

func (s *explorerService) ReportPositionError(ctx context.Context, sessionID string, code service.PositionErrorCode, message string) error {
	reporter, err := s.reporter(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := reporter.ReportError(code, message); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

func (s *explorerService) Search(ctx context.Context, sessionID, category string) (*usecase.SearchResult, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = deliverycontext.WithSession(ctx, sess.ID, s.logger)
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	coords := sess.Location()
	if coords == nil {
		coords, err = s.location.RequestLocation(ctx, sess)
		if err != nil {
			sess.SetStatus(StatusNeedLocation)

			return nil, domainerrors.ErrLocationRequired.WithDetails(err.Error())
		}
	}

	seq := sess.NextSearch()

	places, err := s.search.SearchNearbyPlaces(ctx, sess, coords, category, s.uiLimit)
	if err != nil {
		var apiErr *domainerrors.PlacesAPIError
		if errors.As(err, &apiErr) {
			sess.SetStatus(apiErr.Message())
		} else {
			sess.SetStatus(StatusSearchFailed)
		}

		return nil, err
	}

	status := fmt.Sprintf("Found %d places", len(places))
	rendered := sess.RenderPlaces(seq, places, func() {
		sess.Map().SetMarkers(places)
		sess.SetStatus(status)
	})
	if !rendered {
		logger.Debug("Search superseded, results not rendered", slog.Uint64("seq", seq))
	}

	return &usecase.SearchResult{
		Places:   placeViews(places),
		Rendered: rendered,
		Status:   status,
	}, nil
}

func (s *explorerService) ListPlaces(ctx context.Context, sessionID string) ([]usecase.PlaceView, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return placeViews(sess.Places()), nil
}

func (s *explorerService) SelectPlace(ctx context.Context, sessionID, placeID string) (*usecase.PlaceDetails, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	place, ok := sess.FindPlace(placeID)
	if !ok {
		return nil, domainerrors.ErrPlaceNotFound.WithDetails(placeID)
	}

	sess.SelectPlace(place)
	sess.Map().CenterOn(&place.Coordinates, s.placeZoom)

	return s.details(ctx, place), nil
}

func (s *explorerService) ClosePlace(ctx context.Context, sessionID string) error {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.ClearSelection()

	return nil
}

func (s *explorerService) AttachPhoto(ctx context.Context, sessionID, fileName string, data []byte) (*usecase.PlaceDetails, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	place := sess.Selected()
	if place == nil {
		sess.SetStatus(StatusSelectPlaceFirst)

		return nil, domainerrors.ErrNoPlaceSelected.WithDetails(StatusSelectPlaceFirst)
	}

	if _, err := s.photos.SavePhotoForPlace(ctx, place.ID, data, fileName); err != nil {
		return nil, err
	}

	return s.details(ctx, *place), nil
}

func (s *explorerService) PlacePhotos(ctx context.Context, sessionID, placeID string) ([]entity.StoredPhoto, error) {
	if _, err := s.registry.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	return s.photos.LoadPhotos(ctx, placeID), nil
}

func (s *explorerService) ClearPhotos(ctx context.Context) error {
	return s.photos.ClearPhotos(ctx)
}

func (s *explorerService) Share(ctx context.Context, sessionID string) (*usecase.ShareResult, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.share.ShareCurrentPlace(ctx, sess)
}

func (s *explorerService) RegisterDevice(ctx context.Context, sessionID, deviceToken string) error {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.SetDeviceToken(deviceToken)

	return nil
}

func (s *explorerService) MapState(ctx context.Context, sessionID string) (*usecase.MapState, error) {
	sess, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &usecase.MapState{
		Ready:   sess.Map().Ready(),
		Status:  sess.Status(),
		Notice:  sess.Notice(),
		Camera:  sess.Map().Camera(),
		Markers: sess.Map().Markers(),
	}, nil
}

func (s *explorerService) details(ctx context.Context, place entity.Place) *usecase.PlaceDetails {
	address := place.Address
	if address == "" {
		address = noAddressText
	}

	return &usecase.PlaceDetails{
		Place:        place,
		AddressText:  address,
		DistanceText: util.FormatDistance(place.DistanceMeters),
		Photos:       s.photos.LoadPhotos(ctx, place.ID),
		ShareEnabled: true,
	}
}

func (s *explorerService) snapshot(ctx context.Context, sess *usecase.Session) *usecase.SessionState {
	loading, loadingText := sess.Loading()
	location := sess.Location()

	state := &usecase.SessionState{
		ID:               sess.ID,
		Status:           sess.Status(),
		Notice:           sess.Notice(),
		Location:         location,
		LocationText:     util.FormatCoords(location),
		Loading:          loading,
		LoadingText:      loadingText,
		MapReady:         sess.Map().Ready(),
		BootDone:         sess.BootDone(),
		DeviceRegistered: sess.DeviceToken() != "",
		Places:           placeViews(sess.Places()),
	}

	if reporter, ok := sess.Geolocator().(service.PositionReporter); ok {
		state.LocationPending = reporter.Pending()
	}

	if selected := sess.Selected(); selected != nil {
		state.Selected = s.details(ctx, *selected)
	}

	return state
}

func placeViews(places []entity.Place) []usecase.PlaceView {
	views := make([]usecase.PlaceView, 0, len(places))
	for _, place := range places {
		address := place.Address
		if address == "" {
			address = noAddressText
		}
		views = append(views, usecase.PlaceView{
			Place:    place,
			Subtitle: address + " · " + util.FormatDistanceShort(place.DistanceMeters),
		})
	}

	return views
}
