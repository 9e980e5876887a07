package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
)

const fallbackLink = "https://nearby.example/shares/tok"

var sharedPlace = entity.Place{
	ID:      "poi.7",
	Name:    "Blue Bottle",
	Address: "1 Market St",
}

type shareFixture struct {
	photos    usecase.PhotoUsecase
	target    *mockShareTarget
	presenter *mockFallbackPresenter
	sess      *usecase.Session
}

func newShareFixture(t *testing.T, photoCount int) *shareFixture {
	t.Helper()

	photos := NewPhotoService(newMemoryStore(), newTestConfig(), newDiscardLogger())
	for range photoCount {
		_, err := photos.SavePhotoForPlace(context.Background(), sharedPlace.ID, pngBytes, "front.png")
		require.NoError(t, err)
	}

	sess := newTestSession(nil)
	sess.SelectPlace(sharedPlace)

	return &shareFixture{
		photos:    photos,
		target:    new(mockShareTarget),
		presenter: new(mockFallbackPresenter),
		sess:      sess,
	}
}

func (f *shareFixture) service(withTarget bool) usecase.ShareUsecase {
	var target service.ShareTarget
	if withTarget {
		target = f.target
	}

	return NewShareService(f.photos, target, f.presenter, newDiscardLogger())
}

func TestShareService_NoSelection(t *testing.T) {
	f := newShareFixture(t, 0)
	f.sess.ClearSelection()

	_, err := f.service(true).ShareCurrentPlace(context.Background(), f.sess)
	assert.ErrorIs(t, err, domainerrors.ErrNoPlaceSelected)
	f.presenter.AssertNotCalled(t, "Present", mock.Anything, mock.Anything, mock.Anything)
}

func TestShareService_Native(t *testing.T) {
	f := newShareFixture(t, 2)
	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")

	f.target.On("CanShare", mock.Anything).Return(true)
	f.target.On("Share", mock.Anything, mock.MatchedBy(func(p *service.SharePayload) bool {
		return p.RequestID == "req-1" &&
			p.SessionID == f.sess.ID &&
			p.PlaceID == "poi.7" &&
			p.Title == "Blue Bottle" &&
			p.Text == "Blue Bottle - 1 Market St" &&
			len(p.Files) == 2 &&
			p.Files[0].MIMEType == "image/png" &&
			string(p.Files[0].Data) == string(pngBytes)
	})).Return(nil).Once()

	result, err := f.service(true).ShareCurrentPlace(ctx, f.sess)
	require.NoError(t, err)
	assert.Equal(t, &usecase.ShareResult{Method: usecase.ShareMethodNative}, result)
	f.target.AssertExpectations(t)
	f.presenter.AssertNotCalled(t, "Present", mock.Anything, mock.Anything, mock.Anything)
}

func TestShareService_FallsBack(t *testing.T) {
	tests := []struct {
		name       string
		photos     int
		withTarget bool
		setup      func(*mockShareTarget)
	}{
		{name: "no target", photos: 1},
		{name: "no photos", photos: 0, withTarget: true},
		{
			name: "declined", photos: 1, withTarget: true,
			setup: func(m *mockShareTarget) {
				m.On("CanShare", mock.Anything).Return(false)
			},
		},
		{
			name: "share error", photos: 1, withTarget: true,
			setup: func(m *mockShareTarget) {
				m.On("CanShare", mock.Anything).Return(true)
				m.On("Share", mock.Anything, mock.Anything).Return(errors.New("AbortError"))
			},
		},
		{
			name: "share panic", photos: 1, withTarget: true,
			setup: func(m *mockShareTarget) {
				m.On("CanShare", mock.Anything).Return(true)
				m.On("Share", mock.Anything, mock.Anything).Panic("platform crashed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newShareFixture(t, tt.photos)
			f.sess.SetDeviceToken("device-1")
			if tt.setup != nil {
				tt.setup(f.target)
			}

			f.presenter.On("Present", mock.Anything, mock.MatchedBy(func(page *service.FallbackPage) bool {
				return page.Title == "Blue Bottle" &&
					page.Address == "1 Market St" &&
					len(page.Photos) == tt.photos
			}), "device-1").Return(fallbackLink, nil).Once()

			result, err := f.service(tt.withTarget).ShareCurrentPlace(context.Background(), f.sess)
			require.NoError(t, err)
			assert.Equal(t, usecase.ShareMethodFallback, result.Method)
			assert.Equal(t, fallbackLink, result.URL)
			f.presenter.AssertExpectations(t)
		})
	}
}

func TestShareService_FallbackPhotoNames(t *testing.T) {
	f := newShareFixture(t, 2)

	var page *service.FallbackPage
	f.presenter.On("Present", mock.Anything, mock.Anything, "").
		Run(func(args mock.Arguments) { page = args.Get(1).(*service.FallbackPage) }).
		Return(fallbackLink, nil)

	_, err := f.service(false).ShareCurrentPlace(context.Background(), f.sess)
	require.NoError(t, err)
	require.Len(t, page.Photos, 2)
	assert.Equal(t, "photo-1.png", page.Photos[0].FileName)
	assert.Equal(t, "photo-2.png", page.Photos[1].FileName)
	assert.Equal(t, "image/png", page.Photos[0].MIMEType)
	assert.Equal(t, len(pngBytes), page.Photos[0].Size)
}

func TestShareService_FallbackFailureSurfaces(t *testing.T) {
	f := newShareFixture(t, 0)
	f.presenter.On("Present", mock.Anything, mock.Anything, mock.Anything).
		Return("", domainerrors.NewStorageError(errors.New("disk full"), "put share page"))

	_, err := f.service(false).ShareCurrentPlace(context.Background(), f.sess)
	var storageErr *domainerrors.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestShareService_OpenAndQRCodeDelegate(t *testing.T) {
	f := newShareFixture(t, 0)
	f.presenter.On("Open", mock.Anything, "tok").Return([]byte("<html>"), nil)
	f.presenter.On("QRCode", mock.Anything, "bad").Return(nil, domainerrors.ErrShareLinkInvalid)

	svc := f.service(false)

	page, err := svc.OpenSharePage(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>"), page)

	_, err = svc.ShareQRCode(context.Background(), "bad")
	assert.ErrorIs(t, err, domainerrors.ErrShareLinkInvalid)
}
