// Package persistence selects the key-value backend named by storage.driver.
package persistence

import (
	"context"
	"log/slog"

	"nearby/config"
	"nearby/internal/domain/lifecycle"
	"nearby/internal/domain/repository"
	"nearby/internal/errors"
	"nearby/internal/infra/persistence/blob"
	"nearby/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewKeyValueStore creates the configured key-value store and closes it on stop.
func NewKeyValueStore(params Params) (repository.KeyValueStore, error) {
	storage := params.Config.Storage

	var (
		kv  repository.KeyValueStore
		err error
	)
	switch storage.Driver {
	case config.StorageDriverBlob:
		ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
		defer cancel()

		kv, err = blob.Open(ctx, storage.BlobURL)
		if err != nil {
			return nil, err
		}
		params.Logger.Info("Using blob key-value store", slog.String("url", storage.BlobURL))
	case config.StorageDriverPostgres:
		db, dbErr := postgres.New(params.Lifecycle, params.Config, params.Logger)
		if dbErr != nil {
			return nil, dbErr
		}
		kv = postgres.NewKeyValueRepository(db)
		params.Logger.Info("Using Postgres key-value store")
	default:
		return nil, errors.Errorf("unsupported storage driver %q", storage.Driver)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return kv.Close()
		},
	})

	return kv, nil
}
