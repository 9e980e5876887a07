package usecase

import (
	"context"
	"sync"
	"time"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
)

const idleLoadingText = "Idle"

// Session is the state of one explorer: what a browser tab keeps in memory.
// It is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	geolocator service.Geolocator
	presenter  MapPresenter

	ctx    context.Context
	cancel context.CancelFunc

	// renderMu serializes RenderPlaces; it is taken before mu.
	renderMu sync.Mutex

	mu          sync.RWMutex
	lastSeen    time.Time
	status      string
	notice      string
	location    *entity.Coordinate
	places      []entity.Place
	selected    *entity.Place
	deviceToken string
	loading     int
	loadingText string
	searchSeq   uint64
	bootDone    bool
}

// NewSession creates a session whose lifetime context derives from parent.
// geolocator may be nil when positioning is unsupported.
func NewSession(parent context.Context, id string, geolocator service.Geolocator, presenter MapPresenter, now time.Time) *Session {
	ctx, cancel := context.WithCancel(parent)

	return &Session{
		ID:          id,
		CreatedAt:   now,
		geolocator:  geolocator,
		presenter:   presenter,
		ctx:         ctx,
		cancel:      cancel,
		lastSeen:    now,
		loadingText: idleLoadingText,
	}
}

// Context is cancelled when the session is closed.
func (s *Session) Context() context.Context { return s.ctx }

// Close cancels the session context and everything running under it.
func (s *Session) Close() { s.cancel() }

// Geolocator returns the position source, nil when unsupported.
func (s *Session) Geolocator() service.Geolocator { return s.geolocator }

// Map returns the map presenter of the session.
func (s *Session) Map() MapPresenter { return s.presenter }

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// ExpiredAt reports whether the session was idle for at least ttl at now.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return now.Sub(s.lastSeen) >= ttl
}

func (s *Session) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// SetNotice sets the persistent notice shown next to the map.
func (s *Session) SetNotice(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notice = notice
}

func (s *Session) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.notice
}

func (s *Session) SetLocation(coord entity.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = &coord
}

// Location returns a copy of the last known position, nil if none.
func (s *Session) Location() *entity.Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.location == nil {
		return nil
	}
	coord := *s.location

	return &coord
}

// SetLoading implements LoadingIndicator. Overlapping operations are
// counted, the indicator is idle once every one of them cleared it.
func (s *Session) SetLoading(loading bool, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loading {
		s.loading++
		if text == "" {
			text = "Loading..."
		}
		s.loadingText = text

		return
	}

	if s.loading > 0 {
		s.loading--
	}
	if s.loading == 0 {
		s.loadingText = idleLoadingText
	}
}

// Loading returns whether an operation is in flight and the indicator text.
func (s *Session) Loading() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading > 0, s.loadingText
}

// NextSearch issues a search sequence number.
func (s *Session) NextSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchSeq++

	return s.searchSeq
}

// RenderPlaces stores places as the current results and then calls draw,
// unless a newer search was issued after seq. Renders are serialized, so the
// stored results and the last draw always belong to the same search.
// It reports whether the places were rendered.
func (s *Session) RenderPlaces(seq uint64, places []entity.Place, draw func()) bool {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	if !s.storePlaces(seq, places) {
		return false
	}
	if draw != nil {
		draw()
	}

	return true
}

func (s *Session) storePlaces(seq uint64, places []entity.Place) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.searchSeq {
		return false
	}
	s.places = append([]entity.Place(nil), places...)

	return true
}

// Places returns a copy of the current results.
func (s *Session) Places() []entity.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.Place(nil), s.places...)
}

// FindPlace looks a place up in the current results.
func (s *Session) FindPlace(placeID string) (entity.Place, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.places {
		if p.ID == placeID {
			return p, true
		}
	}

	return entity.Place{}, false
}

func (s *Session) SelectPlace(place entity.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = &place
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = nil
}

// Selected returns a copy of the selected place, nil if none.
func (s *Session) Selected() *entity.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == nil {
		return nil
	}
	place := *s.selected

	return &place
}

func (s *Session) SetDeviceToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deviceToken = token
}

func (s *Session) DeviceToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.deviceToken
}

func (s *Session) MarkBootDone() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bootDone = true
}

func (s *Session) BootDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bootDone
}
