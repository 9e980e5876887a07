package model

import "time"

// KeyValueModel is the GORM-specific struct for the 'key_values' table.
// One row holds one opaque document, e.g. the whole photo index.
type KeyValueModel struct {
	Key         string `gorm:"type:varchar(255);primary_key"`
	Value       []byte `gorm:"type:bytea;not null"`
	ContentType string `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (KeyValueModel) TableName() string {
	return "key_values"
}
