package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	"task-tracker/internal/repository"
)

func TestNew_LocalOnly(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "tasks.db")
	cfg.Timezone = "UTC"

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a.Cache)
	assert.Nil(t, a.Events)

	task, err := a.Tasks.Create(context.Background(), "wired", "end to end")
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	require.NoError(t, a.Close())
	_, err = a.Tasks.List(context.Background())
	assert.ErrorIs(t, err, repository.ErrClosed)
}

func TestNew_UnreachableRedisIsSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "tasks.db")
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Cache)
}

func TestNew_BadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "tasks.db")
	cfg.Timezone = "Nowhere/Special"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
