package impl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	domainerrors "nearby/internal/domain/errors"
)

func TestSessionRegistry_CreateGetRemove(t *testing.T) {
	geolocator := &reportingGeolocator{}
	registry := newSessionRegistry(staticGeolocatorFactory{geolocator: geolocator}, time.Minute, newDiscardLogger())
	ctx := context.Background()

	sess, err := registry.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Same(t, geolocator, sess.Geolocator())
	assert.False(t, sess.Map().Ready())
	assert.Equal(t, 1, registry.Len())

	got, err := registry.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	registry.Remove(sess.ID)
	assert.Equal(t, 0, registry.Len())
	require.Error(t, sess.Context().Err(), "removed sessions are closed")

	_, err = registry.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSessionRegistry_UnsupportedGeolocation(t *testing.T) {
	registry := newSessionRegistry(staticGeolocatorFactory{}, time.Minute, newDiscardLogger())

	sess, err := registry.Create(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess.Geolocator())
}

func TestSessionRegistry_Expiry(t *testing.T) {
	registry := newSessionRegistry(staticGeolocatorFactory{}, time.Minute, newDiscardLogger())
	start := time.Now()
	registry.now = func() time.Time { return start }
	ctx := context.Background()

	idle, err := registry.Create(ctx)
	require.NoError(t, err)
	active, err := registry.Create(ctx)
	require.NoError(t, err)

	registry.now = func() time.Time { return start.Add(50 * time.Second) }
	_, err = registry.Get(ctx, active.ID)
	require.NoError(t, err)

	registry.now = func() time.Time { return start.Add(61 * time.Second) }
	_, err = registry.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotFound, "an expired session is not served before the sweep")

	assert.Equal(t, 1, registry.Sweep(start.Add(61*time.Second)))
	assert.Equal(t, 1, registry.Len())
	require.Error(t, idle.Context().Err())
	require.NoError(t, active.Context().Err())
}

func TestSessionRegistry_LifecycleClosesSessions(t *testing.T) {
	cfg := newTestConfig()
	cfg.Session.SweepInterval = time.Millisecond
	lc := fxtest.NewLifecycle(t)

	registry := NewSessionRegistry(SessionRegistryParams{
		Lc:          lc,
		Geolocators: staticGeolocatorFactory{},
		Config:      cfg,
		Logger:      newDiscardLogger(),
	})
	lc.RequireStart()

	sess, err := registry.Create(context.Background())
	require.NoError(t, err)

	lc.RequireStop()
	require.Error(t, sess.Context().Err())
	assert.Equal(t, 0, registry.Len())

	_, err = registry.Create(context.Background())
	assert.Error(t, err)
}
