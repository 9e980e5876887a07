package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/repository"
	"nearby/internal/errors"
	"nearby/internal/usecase"
	"nearby/internal/util"
)

const photoIndexContentType = "application/json"

type photoService struct {
	store    repository.KeyValueStore
	indexKey string
	logger   *slog.Logger
	now      func() time.Time

	// writeMu serializes read-modify-write cycles of the index.
	writeMu sync.Mutex
}

// NewPhotoService creates the photo store
func NewPhotoService(store repository.KeyValueStore, cfg *config.Config, logger *slog.Logger) usecase.PhotoUsecase {
	return &photoService{
		store:    store,
		indexKey: cfg.Storage.PhotoIndexKey,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *photoService) SavePhotoForPlace(ctx context.Context, placeID string, data []byte, fileName string) (*entity.StoredPhoto, error) {
	mtype := mimetype.Detect(data)
	encoded := entity.EncodeDataURL(mtype.String(), data)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	index, err := s.readIndex(ctx)
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "read photo index")
	}

	existing := index[placeID]

	id := s.now().UnixMilli()
	if n := len(existing); n > 0 && existing[n-1].ID >= id {
		id = existing[n-1].ID + 1
	}

	if strings.TrimSpace(fileName) == "" {
		fileName = "photo" + mtype.Extension()
	}

	photo := entity.StoredPhoto{
		ID:           id,
		Name:         fileName,
		EncodedImage: encoded,
	}
	index[placeID] = append(existing, photo)

	raw, err := json.Marshal(index)
	if err != nil {
		return nil, errors.Wrap(err, "marshal photo index")
	}

	if err := s.store.Put(ctx, s.indexKey, raw, photoIndexContentType); err != nil {
		return nil, domainerrors.NewStorageError(err, "write photo index")
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Debug("Photo saved",
		slog.String("place_id", placeID),
		slog.Int64("photo_id", id),
		slog.String("mime_type", mtype.String()),
		slog.String("size", util.FormatBytes(int64(len(data)))),
	)

	return &photo, nil
}

func (s *photoService) LoadPhotos(ctx context.Context, placeID string) []entity.StoredPhoto {
	index, err := s.readIndex(ctx)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Photo index unavailable", slog.Any("error", err))

		return []entity.StoredPhoto{}
	}

	photos := index[placeID]
	if photos == nil {
		return []entity.StoredPhoto{}
	}

	return photos
}

func (s *photoService) ClearPhotos(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Delete(ctx, s.indexKey); err != nil {
		return domainerrors.NewStorageError(err, "clear photo index")
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("Photo store cleared")

	return nil
}

// readIndex returns an empty index when the key is absent or holds corrupt
// JSON. Only store failures are returned.
func (s *photoService) readIndex(ctx context.Context) (entity.PhotoIndex, error) {
	raw, err := s.store.Get(ctx, s.indexKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return entity.PhotoIndex{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get photo index")
	}

	index := entity.PhotoIndex{}
	if err := json.Unmarshal(raw, &index); err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, s.logger).Warn("Photo index is corrupt, treating as empty",
			slog.String("key", s.indexKey),
			slog.Any("error", err),
		)

		return entity.PhotoIndex{}, nil
	}
	if index == nil {
		return entity.PhotoIndex{}, nil
	}

	return index, nil
}
