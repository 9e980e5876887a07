package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearby/internal/domain/entity"
)

func newTestSession() *Session {
	return NewSession(context.Background(), "sess-1", nil, nil, time.Now())
}

func TestSession_RenderPlacesSkipsStaleSearch(t *testing.T) {
	sess := newTestSession()
	older := sess.NextSearch()
	newer := sess.NextSearch()

	drawn := false
	assert.False(t, sess.RenderPlaces(older, []entity.Place{{ID: "old"}}, func() { drawn = true }))
	assert.False(t, drawn)
	assert.Empty(t, sess.Places())

	assert.True(t, sess.RenderPlaces(newer, []entity.Place{{ID: "new"}}, func() { drawn = true }))
	assert.True(t, drawn)
	require.Len(t, sess.Places(), 1)
	assert.Equal(t, "new", sess.Places()[0].ID)
}

func TestSession_RenderPlacesDrawsInSearchOrder(t *testing.T) {
	sess := newTestSession()

	var (
		mu    sync.Mutex
		draws []string
	)
	record := func(id string) {
		mu.Lock()
		defer mu.Unlock()
		draws = append(draws, id)
	}

	first := sess.NextSearch()
	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan bool)
	go func() {
		firstDone <- sess.RenderPlaces(first, []entity.Place{{ID: "a"}}, func() {
			close(entered)
			<-release
			record("a")
		})
	}()
	<-entered

	// A newer search finishes while the first one is still drawing.
	second := sess.NextSearch()
	secondDone := make(chan bool)
	go func() {
		secondDone <- sess.RenderPlaces(second, []entity.Place{{ID: "b"}}, func() { record("b") })
	}()

	close(release)
	assert.True(t, <-firstDone)
	assert.True(t, <-secondDone)

	assert.Equal(t, []string{"a", "b"}, draws)
	require.Len(t, sess.Places(), 1)
	assert.Equal(t, "b", sess.Places()[0].ID)
}
