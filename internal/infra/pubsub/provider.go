package pubsub

import (
	"context"
	"log/slog"

	"nearby/config"
	"nearby/internal/domain/service"
	"nearby/internal/errors"

	"go.uber.org/fx"
)

// noopShareTarget never advertises support, so every share uses the fallback
type noopShareTarget struct{}

func (noopShareTarget) CanShare(*service.SharePayload) bool { return false }

func (noopShareTarget) Share(context.Context, *service.SharePayload) error {
	return errors.New("native sharing is not available")
}

func (noopShareTarget) Close() error { return nil }

// ShareTargetParams holds dependencies for ShareTarget, injected by Fx
type ShareTargetParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewShareTarget creates the native share target based on configuration
func NewShareTarget(params ShareTargetParams) (service.ShareTarget, error) {
	cfg := params.Config.PubSub
	maxPayload := params.Config.Share.MaxPayloadBytes
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("PubSub not configured, native sharing disabled")

		return noopShareTarget{}, nil
	}

	var (
		target service.ShareTarget
		err    error
	)

	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP share target", slog.String("endpoint", cfg.LocalEndpoint))

		target = NewLocalShareTarget(cfg.LocalEndpoint, maxPayload, nil, logger)

	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}

		target, err = NewGoogleShareTarget(params.Ctx, cfg.ProjectID, cfg.TopicID, maxPayload, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("Closing share target")

			return target.Close()
		},
	})

	return target, nil
}
