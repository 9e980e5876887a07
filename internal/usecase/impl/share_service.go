package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
)

const noAddressText = "No address"

type shareService struct {
	photos    usecase.PhotoUsecase
	target    service.ShareTarget
	presenter service.FallbackPresenter
	logger    *slog.Logger
}

// NewShareService creates the share composer. target may be nil.
func NewShareService(
	photos usecase.PhotoUsecase,
	target service.ShareTarget,
	presenter service.FallbackPresenter,
	logger *slog.Logger,
) usecase.ShareUsecase {
	return &shareService{
		photos:    photos,
		target:    target,
		presenter: presenter,
		logger:    logger,
	}
}

func (s *shareService) ShareCurrentPlace(ctx context.Context, sess *usecase.Session) (*usecase.ShareResult, error) {
	place := sess.Selected()
	if place == nil {
		return nil, domainerrors.ErrNoPlaceSelected
	}

	ctx = deliverycontext.WithSession(ctx, sess.ID, s.logger)
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger).With(slog.String("place_id", place.ID))

	stored := s.photos.LoadPhotos(ctx, place.ID)
	text := shareText(place)

	if payload, ok := s.nativePayload(ctx, sess, place, text, stored); ok {
		err := s.tryNative(ctx, payload)
		if err == nil {
			logger.Info("Place shared natively", slog.Int("files", len(payload.Files)))

			return &usecase.ShareResult{Method: usecase.ShareMethodNative}, nil
		}
		logger.Warn("Native share failed, falling back", slog.Any("error", err))
	}

	link, err := s.presenter.Present(ctx, fallbackPage(place, text, stored), sess.DeviceToken())
	if err != nil {
		logger.Error("Fallback share failed", slog.Any("error", err))

		return nil, err
	}

	logger.Info("Place shared via fallback page", slog.Int("photos", len(stored)))

	return &usecase.ShareResult{Method: usecase.ShareMethodFallback, URL: link}, nil
}

func (s *shareService) OpenSharePage(ctx context.Context, token string) ([]byte, error) {
	return s.presenter.Open(ctx, token)
}

func (s *shareService) ShareQRCode(ctx context.Context, token string) ([]byte, error) {
	return s.presenter.QRCode(ctx, token)
}

// nativePayload builds the payload for the share target. It reports false
// when there is no target, no photo, or a photo that does not decode.
func (s *shareService) nativePayload(
	ctx context.Context,
	sess *usecase.Session,
	place *entity.Place,
	text string,
	stored []entity.StoredPhoto,
) (*service.SharePayload, bool) {
	if s.target == nil || len(stored) == 0 {
		return nil, false
	}

	files := make([]service.ShareFile, 0, len(stored))
	for _, photo := range stored {
		mimeType, data, err := photo.Decode()
		if err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Stored photo does not decode",
				slog.Int64("photo_id", photo.ID),
				slog.Any("error", err),
			)

			return nil, false
		}
		files = append(files, service.ShareFile{
			Name:     photo.Name,
			MIMEType: mimeType,
			Data:     data,
		})
	}

	return &service.SharePayload{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		SessionID: sess.ID,
		PlaceID:   place.ID,
		Title:     place.Name,
		Text:      text,
		Files:     files,
	}, true
}

// tryNative runs the native share and turns a decline or a panic into an error.
func (s *shareService) tryNative(ctx context.Context, payload *service.SharePayload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("share target panicked: %v", r)
		}
	}()

	if !s.target.CanShare(payload) {
		return errors.New("share target declined the payload")
	}

	return s.target.Share(ctx, payload)
}

func shareText(place *entity.Place) string {
	address := place.Address
	if address == "" {
		address = noAddressText
	}

	return fmt.Sprintf("%s - %s", place.Name, address)
}

func fallbackPage(place *entity.Place, text string, stored []entity.StoredPhoto) *service.FallbackPage {
	page := &service.FallbackPage{
		Title:   place.Name,
		Address: place.Address,
		Text:    text,
		Photos:  make([]service.FallbackPhoto, 0, len(stored)),
	}

	for i, photo := range stored {
		mimeType, data, err := photo.Decode()
		if err != nil {
			// The page still links the raw encoding.
			page.Photos = append(page.Photos, service.FallbackPhoto{
				FileName: "photo-" + strconv.Itoa(i+1),
				DataURL:  photo.EncodedImage,
			})

			continue
		}

		page.Photos = append(page.Photos, service.FallbackPhoto{
			FileName: "photo-" + strconv.Itoa(i+1) + extensionOf(mimeType),
			MIMEType: mimeType,
			Size:     len(data),
			DataURL:  photo.EncodedImage,
		})
	}

	return page
}

func extensionOf(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil {
		return m.Extension()
	}

	return ""
}
