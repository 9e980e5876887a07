package usecase

import (
	"context"

	"nearby/internal/domain/entity"
)

// PhotoUsecase is the persistent store of photos attached to places.
type PhotoUsecase interface {
	SavePhotoForPlace(ctx context.Context, placeID string, data []byte, fileName string) (*entity.StoredPhoto, error)

	// LoadPhotos never fails, an unreadable index reads as empty.
	LoadPhotos(ctx context.Context, placeID string) []entity.StoredPhoto

	// ClearPhotos removes every photo of every place.
	ClearPhotos(ctx context.Context) error
}
