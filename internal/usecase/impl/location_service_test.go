package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

func TestLocationService_RequestLocation_Success(t *testing.T) {
	cfg := newTestConfig()
	geolocator := new(mockGeolocator)
	want := entity.NewCoordinate(48.8584, 2.2945).WithAccuracy(12)
	geolocator.On("CurrentPosition", mock.Anything, service.PositionOptions{
		HighAccuracy: cfg.Location.HighAccuracy,
		MaximumAge:   cfg.Location.MaximumAge,
		Timeout:      cfg.Location.Timeout,
	}).Return(want, nil).Once()

	sess := newTestSession(geolocator)
	instance := newReadyMap()
	sess.Map().Attach(instance)

	svc := NewLocationService(cfg, newDiscardLogger())
	got, err := svc.RequestLocation(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, want, *got)
	assert.Equal(t, &want, sess.Location())
	assert.Equal(t, StatusLocationAcquired, sess.Status())
	assert.Equal(t, want, instance.Camera().Center)
	assert.InDelta(t, cfg.MapLibrary.FocusZoom, instance.Camera().Zoom, 1e-9)
	geolocator.AssertExpectations(t)
}

func TestLocationService_RequestLocation_BeforeMapReady(t *testing.T) {
	geolocator := new(mockGeolocator)
	geolocator.On("CurrentPosition", mock.Anything, mock.Anything).Return(entity.NewCoordinate(1, 2), nil)

	sess := newTestSession(geolocator)
	svc := NewLocationService(newTestConfig(), newDiscardLogger())

	_, err := svc.RequestLocation(context.Background(), sess)
	require.NoError(t, err)
	assert.NotNil(t, sess.Location())
	assert.Nil(t, sess.Map().Camera())
}

func TestLocationService_RequestLocation_Unsupported(t *testing.T) {
	sess := newTestSession(nil)
	svc := NewLocationService(newTestConfig(), newDiscardLogger())

	got, err := svc.RequestLocation(context.Background(), sess)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domainerrors.ErrLocationUnsupported)
	assert.Equal(t, StatusLocationUnsupported, sess.Status())
	assert.Nil(t, sess.Location())
}

func TestLocationService_RequestLocation_PositionErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    service.PositionErrorCode
		message string
		want    error
	}{
		{"denied", service.PositionPermissionDenied, "User denied Geolocation", domainerrors.ErrLocationDenied},
		{"unavailable", service.PositionUnavailable, "Position unavailable", domainerrors.ErrLocationFailure},
		{"timeout", service.PositionTimeout, "Timeout expired", domainerrors.ErrLocationTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geolocator := new(mockGeolocator)
			geolocator.On("CurrentPosition", mock.Anything, mock.Anything).
				Return(entity.Coordinate{}, &service.PositionError{Code: tt.code, Message: tt.message})

			sess := newTestSession(geolocator)
			previous := entity.NewCoordinate(10, 10)
			sess.SetLocation(previous)

			svc := NewLocationService(newTestConfig(), newDiscardLogger())
			_, err := svc.RequestLocation(context.Background(), sess)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "Location error: "+tt.message, sess.Status())
			assert.Equal(t, &previous, sess.Location(), "a failed request keeps the last known position")
		})
	}
}

func TestLocationService_RequestLocation_ContextError(t *testing.T) {
	geolocator := new(mockGeolocator)
	geolocator.On("CurrentPosition", mock.Anything, mock.Anything).
		Return(entity.Coordinate{}, errors.Wrap(context.Canceled, "waiting for position"))

	sess := newTestSession(geolocator)
	svc := NewLocationService(newTestConfig(), newDiscardLogger())

	_, err := svc.RequestLocation(context.Background(), sess)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, sess.Status(), "Location error: ")
}
