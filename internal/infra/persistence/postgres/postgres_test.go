package postgres

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolWait(t *testing.T) {
	prev := sql.DBStats{WaitCount: 3, WaitDuration: 10 * time.Millisecond}

	_, _, ok := poolWait(prev, prev)
	assert.False(t, ok)

	level, attrs, ok := poolWait(prev, sql.DBStats{WaitCount: 5, WaitDuration: 20 * time.Millisecond, InUse: 4})
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Contains(t, attrs, slog.Duration("avg_wait", 5*time.Millisecond))
	assert.Contains(t, attrs, slog.Int("in_use", 4))

	level, _, ok = poolWait(prev, sql.DBStats{WaitCount: 4, WaitDuration: 70 * time.Millisecond})
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)
}
