package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/repository"
)

func TestRun_SeedsBackdatedTasks(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "seed.db")
	cfg.Timezone = "UTC"

	before := time.Now()
	require.NoError(t, run(cfg, 40, 10))

	db, err := database.Open(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)
	store := repository.NewTaskStore(db)
	defer store.Close()

	tasks, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 40)
	for _, task := range tasks {
		assert.False(t, task.CreatedAt.After(before.Add(time.Second)), task.Title)
		assert.True(t, task.CreatedAt.After(before.Add(-11*24*time.Hour)), task.Title)
		if task.Completed {
			require.NotNil(t, task.CompletedAt)
			assert.False(t, task.CompletedAt.Before(task.CreatedAt), task.Title)
		}
	}
}

func TestRun_BadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "seed.db")
	cfg.Timezone = "Nowhere/Special"

	assert.Error(t, run(cfg, 1, 1))
	assert.NoFileExists(t, cfg.DatabasePath)
}
