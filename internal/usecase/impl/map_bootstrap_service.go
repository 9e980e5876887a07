package impl

import (
	"context"
	"fmt"
	"log/slog"

	"nearby/config"
	deliverycontext "nearby/internal/delivery/context"
	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
	"nearby/internal/usecase"
	"nearby/internal/util"
)

// Map status texts.
const (
	StatusLoadingMap = "Loading map library..."
	StatusMapReady   = "Map ready"
	StatusMapInit    = "Map init error"
	mapFailedNotice  = "Map failed to load. Check the tile source or network (see server logs)."
)

type mapBootstrapService struct {
	library service.MapLibrary
	cfg     *config.MapLibraryConfig
	logger  *slog.Logger
}

// NewMapBootstrapService creates the map bootstrapper.
func NewMapBootstrapService(library service.MapLibrary, cfg *config.Config, logger *slog.Logger) usecase.MapBootstrapUsecase {
	return &mapBootstrapService{
		library: library,
		cfg:     cfg.MapLibrary,
		logger:  logger,
	}
}

func (s *mapBootstrapService) InitMapWhenReady(ctx context.Context, sess *usecase.Session, opts usecase.BootstrapOptions) error {
	ctx = deliverycontext.WithSession(ctx, sess.ID, s.logger)
	logger := deliverycontext.GetLoggerOrDefault(ctx, s.logger)

	if opts.Interval <= 0 {
		opts.Interval = usecase.DefaultBootstrapOptions.Interval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = usecase.DefaultBootstrapOptions.MaxAttempts
	}

	sess.SetStatus(StatusLoadingMap)

	attempts, err := util.Poll(ctx, util.PollOptions{Interval: opts.Interval, MaxAttempts: opts.MaxAttempts}, s.library.Loaded)
	if err != nil {
		if !errors.Is(err, util.ErrPollExhausted) {
			return err
		}

		msg := fmt.Sprintf("Map library failed to load after %d attempts. Check the tile source or network.", attempts)
		logger.Error(msg, slog.Duration("interval", opts.Interval))
		sess.SetStatus(msg)
		sess.SetNotice(mapFailedNotice)

		return domainerrors.ErrMapLibraryUnavailable.WithDetails(msg)
	}

	instance, err := s.newMap(sess.ID)
	if err != nil {
		logger.Error("Map initialization error", slog.Any("error", err))
		sess.SetStatus(StatusMapInit)

		return domainerrors.ErrMapInit.WithDetails(err.Error())
	}

	select {
	case <-instance.Ready():
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for map load")
	}

	if err := instance.Err(); err != nil {
		logger.Error("Map failed to load", slog.Any("error", err))
		sess.SetStatus(StatusMapInit)

		return domainerrors.ErrMapInit.WithDetails(err.Error())
	}

	sess.Map().Attach(instance)
	sess.SetStatus(StatusMapReady)
	logger.Info("Map ready", slog.Int("attempts", attempts))

	if loc := sess.Location(); loc != nil {
		sess.Map().CenterOn(loc, s.cfg.FocusZoom)
	}

	return nil
}

// newMap turns a panicking constructor into an error.
func (s *mapBootstrapService) newMap(container string) (instance service.MapInstance, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("map constructor panicked: %v", r)
		}
	}()

	center := entity.NewCoordinate(s.cfg.InitialCenter[1], s.cfg.InitialCenter[0])

	return s.library.NewMap(service.MapOptions{
		Container: container,
		Style:     s.cfg.Style,
		Center:    center,
		Zoom:      s.cfg.InitialZoom,
	})
}
