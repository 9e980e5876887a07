package geolocation

import (
	"context"
	"testing"
	"time"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultOpts = service.PositionOptions{HighAccuracy: true, MaximumAge: 10 * time.Second, Timeout: 2 * time.Second}

func waitPending(t *testing.T, d *Device) {
	t.Helper()
	require.Eventually(t, d.Pending, time.Second, 5*time.Millisecond)
}

func TestDevice_WaitsForReport(t *testing.T) {
	d := NewDevice()
	assert.False(t, d.Pending())

	type result struct {
		coord entity.Coordinate
		err   error
	}
	done := make(chan result, 1)
	go func() {
		coord, err := d.CurrentPosition(context.Background(), defaultOpts)
		done <- result{coord, err}
	}()

	waitPending(t, d)
	require.NoError(t, d.ReportPosition(entity.NewCoordinate(25.033, 121.5654).WithAccuracy(12)))

	got := <-done
	require.NoError(t, got.err)
	assert.Equal(t, 25.033, got.coord.Latitude)
	assert.Equal(t, 121.5654, got.coord.Longitude)
	require.NotNil(t, got.coord.Accuracy)
	assert.Equal(t, 12.0, *got.coord.Accuracy)
	assert.False(t, d.Pending())
}

func TestDevice_CachedWithinMaximumAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := newDeviceWithClock(func() time.Time { return now })
	require.NoError(t, d.ReportPosition(entity.NewCoordinate(10, 20)))

	now = now.Add(9 * time.Second)
	coord, err := d.CurrentPosition(context.Background(), defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, entity.NewCoordinate(10, 20), coord)

	// stale fix: the request waits and times out
	now = now.Add(2 * time.Second)
	_, err = d.CurrentPosition(context.Background(), service.PositionOptions{MaximumAge: 10 * time.Second, Timeout: 20 * time.Millisecond})
	var posErr *service.PositionError
	require.True(t, errors.As(err, &posErr))
	assert.Equal(t, service.PositionTimeout, posErr.Code)
}

func TestDevice_ZeroMaximumAgeIgnoresCache(t *testing.T) {
	d := NewDevice()
	require.NoError(t, d.ReportPosition(entity.NewCoordinate(10, 20)))

	_, err := d.CurrentPosition(context.Background(), service.PositionOptions{Timeout: 20 * time.Millisecond})
	var posErr *service.PositionError
	require.True(t, errors.As(err, &posErr))
	assert.Equal(t, service.PositionTimeout, posErr.Code)
	assert.False(t, d.Pending())
}

func TestDevice_ReportError(t *testing.T) {
	d := NewDevice()

	done := make(chan error, 1)
	go func() {
		_, err := d.CurrentPosition(context.Background(), defaultOpts)
		done <- err
	}()

	waitPending(t, d)
	require.NoError(t, d.ReportError(service.PositionPermissionDenied, "User denied Geolocation"))

	err := <-done
	var posErr *service.PositionError
	require.True(t, errors.As(err, &posErr))
	assert.Equal(t, service.PositionPermissionDenied, posErr.Code)
	assert.Equal(t, "User denied Geolocation", posErr.Error())
}

func TestDevice_InvalidReports(t *testing.T) {
	d := NewDevice()

	assert.Error(t, d.ReportPosition(entity.NewCoordinate(91, 0)))
	assert.Error(t, d.ReportError(service.PositionErrorCode(9), "nope"))
	assert.Error(t, d.ReportError(service.PositionErrorCode(0), "nope"))
}

func TestDevice_ContextCancelled(t *testing.T) {
	d := NewDevice()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := d.CurrentPosition(ctx, defaultOpts)
		done <- err
	}()

	waitPending(t, d)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, d.Pending())
}

func TestFixed(t *testing.T) {
	coord := entity.NewCoordinate(48.8584, 2.2945)
	f := NewFixed(coord)

	got, err := f.CurrentPosition(context.Background(), defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, coord, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.CurrentPosition(ctx, defaultOpts)
	assert.ErrorIs(t, err, context.Canceled)
}
