package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"task-tracker/pkg/logger"
)

// Cache keys for task responses. Every task mutation drops all of them.
const (
	TasksKey           = "tasks:all"
	WeekdayStatsKey    = "tasks:stats:weekdays"
	CompletionTimesKey = "tasks:stats:completion-times"
)

var allKeys = []string{TasksKey, WeekdayStatsKey, CompletionTimesKey}

// asyncWriteTimeout bounds background cache writes.
const asyncWriteTimeout = 2 * time.Second

// Cache stores rendered task responses in Redis. A nil *Cache is a valid,
// always-missing cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	// gen counts invalidations made through this Cache. Write-backs carry the
	// generation their data was loaded under and are dropped once it moves on.
	gen atomic.Uint64
}

// Config holds cache configuration.
type Config struct {
	URL      string
	PoolSize int
	TTL      time.Duration
}

// New connects to Redis and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", opts.PoolSize)
	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetRaw reads a cached response. Returns (nil, false) on miss or error.
func (c *Cache) GetRaw(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get failed", "error", err, "key", key)
		return nil, false
	}
	return b, true
}

// SetRaw writes a response with the configured TTL.
func (c *Cache) SetRaw(ctx context.Context, key string, b []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set failed", "error", err, "key", key)
	}
}

// Generation returns the current invalidation generation. Read it before
// loading data that will be written back.
func (c *Cache) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.gen.Load()
}

// SetRawIfCurrent writes b only if no invalidation happened since gen was read.
// It reports whether the write was issued.
func (c *Cache) SetRawIfCurrent(ctx context.Context, key string, b []byte, gen uint64) bool {
	if c == nil || c.gen.Load() != gen {
		return false
	}
	c.SetRaw(ctx, key, b)
	return true
}

// SetRawAsync is SetRawIfCurrent on a detached context, for use after the response is written.
func (c *Cache) SetRawAsync(key string, b []byte, gen uint64) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
	defer cancel()
	if !c.SetRawIfCurrent(ctx, key, b, gen) {
		logger.Debug(ctx, "Stale cache write-back dropped", "key", key)
	}
}

// InvalidateTasks deletes every cached task response so the next read goes to
// the store. The generation moves first so in-flight write-backs are dropped
// even when the delete fails.
func (c *Cache) InvalidateTasks(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.gen.Add(1)
	if err := c.client.Del(ctx, allKeys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate tasks: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
