package postgres

import (
	"context"

	"nearby/internal/domain/repository"
	"nearby/internal/errors"
	"nearby/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type keyValueRepository struct {
	db *gorm.DB
}

// NewKeyValueRepository creates a key-value store on top of the 'key_values' table.
func NewKeyValueRepository(db *gorm.DB) repository.KeyValueStore {
	return &keyValueRepository{db: db}
}

func (repo *keyValueRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var row model.KeyValueModel
	err := repo.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrKeyNotFound
		}

		return nil, errors.Wrapf(err, "failed to get key %q", key)
	}

	return row.Value, nil
}

func (repo *keyValueRepository) Put(ctx context.Context, key string, value []byte, contentType string) error {
	row := &model.KeyValueModel{
		Key:         key,
		Value:       value,
		ContentType: contentType,
	}

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "content_type", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return errors.Wrapf(err, "failed to put key %q", key)
	}

	return nil
}

func (repo *keyValueRepository) Delete(ctx context.Context, key string) error {
	err := repo.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KeyValueModel{}).Error
	if err != nil {
		return errors.Wrapf(err, "failed to delete key %q", key)
	}

	return nil
}

// Close is a no-op, the connection pool is closed by the fx lifecycle hook in New.
func (repo *keyValueRepository) Close() error {
	return nil
}
