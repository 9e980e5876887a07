package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/usecase"
	"nearby/internal/util"
)

type sessionRegistry struct {
	geolocators service.GeolocatorFactory
	ttl         time.Duration
	logger      *slog.Logger
	now         func() time.Time

	// base is the parent of every session context; it is cancelled on stop.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*usecase.Session
}

// SessionRegistryParams holds dependencies for the session registry, injected by Fx.
type SessionRegistryParams struct {
	fx.In

	Lc          fx.Lifecycle
	Geolocators service.GeolocatorFactory
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionRegistry creates the registry and runs its expiry janitor for
// the lifetime of the application.
func NewSessionRegistry(params SessionRegistryParams) usecase.SessionRegistry {
	registry := newSessionRegistry(params.Geolocators, params.Config.Session.TTL, params.Logger)
	interval := params.Config.Session.SweepInterval

	var wg sync.WaitGroup
	params.Lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				registry.janitor(interval)
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			registry.shutdown()
			wg.Wait()

			return nil
		},
	})

	return registry
}

func newSessionRegistry(geolocators service.GeolocatorFactory, ttl time.Duration, logger *slog.Logger) *sessionRegistry {
	base, cancel := context.WithCancel(context.Background())

	return &sessionRegistry{
		geolocators: geolocators,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
		base:        base,
		cancel:      cancel,
		sessions:    make(map[string]*usecase.Session),
	}
}

func (r *sessionRegistry) Create(ctx context.Context) (*usecase.Session, error) {
	if err := r.base.Err(); err != nil {
		return nil, domainerrors.ErrInternalError.WithDetails("session registry is shut down")
	}

	var geolocator service.Geolocator
	if r.geolocators != nil {
		geolocator = r.geolocators.NewGeolocator()
	}

	sess := usecase.NewSession(r.base, uuid.NewString(), geolocator, NewMapPresenter(r.logger), r.now())

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	total := len(r.sessions)
	r.mu.Unlock()

	deliverycontext.GetLoggerOrDefault(ctx, r.logger).Info("Session created",
		slog.String("session_id", sess.ID),
		slog.Bool("geolocation", geolocator != nil),
		slog.Int("sessions", total),
	)

	return sess, nil
}

func (r *sessionRegistry) Get(_ context.Context, id string) (*usecase.Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()

	now := r.now()
	if !ok || sess.ExpiredAt(now, r.ttl) {
		return nil, domainerrors.ErrSessionNotFound
	}
	sess.Touch(now)

	return sess, nil
}

func (r *sessionRegistry) Remove(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		sess.Close()
	}
}

func (r *sessionRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*usecase.Session
	for id, sess := range r.sessions {
		if sess.ExpiredAt(now, r.ttl) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}

	return len(expired)
}

func (r *sessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

func (r *sessionRegistry) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.base.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Info("Expired sessions swept",
					slog.Int("expired", n),
					slog.Int("remaining", r.Len()),
					slog.String("idle_after", util.FormatDuration(r.ttl)),
				)
			}
		}
	}
}

// shutdown closes every session and stops the janitor.
func (r *sessionRegistry) shutdown() {
	r.cancel()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*usecase.Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
