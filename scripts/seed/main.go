// Seed fills the task database with backdated sample tasks so the charts have
// something to show. Run from project root: go run ./scripts/seed
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/repository"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database path (overrides DATABASE_PATH)")
	count := flag.IntP("count", "n", 200, "number of tasks to create")
	days := flag.Int("days", 60, "spread creation times over this many past days")
	flag.Parse()

	config.LoadEnvFile(".env")
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config failed:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	if err := run(cfg, *count, max(*days, 1)); err != nil {
		fmt.Fprintln(os.Stderr, "\nSeed failed:", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, count, days int) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := database.OpenAndMigrate(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}

	// The store stamps tasks with this clock; moving it backdates each row.
	var clock time.Time
	store := repository.NewTaskStore(db,
		repository.WithClock(func() time.Time { return clock }),
		repository.WithLocation(loc))
	defer store.Close()

	now := time.Now()
	start := now
	completed := 0
	for i := 1; i <= count; i++ {
		clock = now.Add(-time.Duration(rand.Int64N(int64(days) * int64(24*time.Hour))))
		task, err := store.Create(ctx, fmt.Sprintf("Task %d", i), fmt.Sprintf("Description for task %d", i))
		if err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}

		fmt.Printf("\rInserted %d / %d", i, count)

		// Roughly three in four tasks get done, most within a week.
		if rand.IntN(4) == 0 {
			continue
		}
		done := clock.Add(time.Duration(rand.Int64N(int64(7 * 24 * time.Hour))))
		if done.After(now) {
			done = now
		}
		clock = done
		if _, err := store.Complete(ctx, task.ID); err != nil {
			return fmt.Errorf("complete task %d: %w", task.ID, err)
		}
		completed++
	}

	fmt.Printf("\nDone: %d tasks (%d completed) in %v\n", count, completed, time.Since(start))
	return nil
}
