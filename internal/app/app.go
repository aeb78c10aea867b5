// Package app builds the object graph shared by the API server and the menu.
package app

import (
	"context"
	"errors"
	"fmt"

	"task-tracker/internal/cache"
	"task-tracker/internal/config"
	"task-tracker/internal/database"
	"task-tracker/internal/queue"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
	"task-tracker/internal/weather"
	"task-tracker/pkg/logger"
)

// App owns the store and the optional cache and event publisher.
type App struct {
	Config  *config.Config
	Store   *repository.TaskStore
	Cache   *cache.Cache     // nil when REDIS_URL is empty or unreachable
	Events  *queue.Publisher // nil when KAFKA_BROKERS is empty
	Tasks   *service.Tasks
	Weather *weather.Client
}

// New opens the database and connects the optional services. An unreachable
// Redis is logged and skipped; a broken database is an error. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := database.OpenAndMigrate(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Task database ready", "path", cfg.DatabasePath)

	a := &App{
		Config: cfg,
		Store:  repository.NewTaskStore(db, repository.WithLocation(loc)),
		Weather: weather.NewClient(weather.Config{
			BaseURL: cfg.WeatherURL,
			APIKey:  cfg.WeatherAPIKey,
			City:    cfg.WeatherCity,
			Units:   cfg.WeatherUnits,
			Lang:    cfg.WeatherLang,
		}, nil),
	}

	var opts []service.Option
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cache.Config{URL: cfg.RedisURL, PoolSize: cfg.RedisPoolSize, TTL: cfg.CacheTTLDuration()})
		if err != nil {
			logger.Warn(ctx, "Cache disabled", "error", err)
		} else {
			a.Cache = c
			opts = append(opts, service.WithCache(c))
		}
	}
	if p := queue.NewPublisher(ctx, a.QueueConfig()); p != nil {
		a.Events = p
		opts = append(opts, service.WithEvents(p))
	}
	a.Tasks = service.New(a.Store, opts...)
	return a, nil
}

// QueueConfig is the event stream configuration.
func (a *App) QueueConfig() queue.Config {
	return queue.Config{
		Brokers:    a.Config.KafkaBrokers,
		Topic:      a.Config.KafkaTopic,
		Partitions: a.Config.KafkaPartitions,
	}
}

// Close flushes events and releases the cache and the database, in that order.
func (a *App) Close() error {
	var errs []error
	if err := a.Events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close events: %w", err))
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
