// Package cache provides the Redis access layer and the rate limiters
// built on it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyNamespace prefixes every key this service writes, so one Redis can be
// shared with other applications.
const keyNamespace = "tareas:"

// poolDefaults are applied to URLs that do not set pool parameters.
var poolDefaults = struct {
	size        int
	minIdle     int
	waitTimeout time.Duration
	idleTimeout time.Duration
}{
	size:        10,
	minIdle:     2,
	waitTimeout: 4 * time.Second,
	idleTimeout: 5 * time.Minute,
}

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to the Redis server at redisURL and verifies it answers.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyPoolDefaults(opt)

	c := NewWithClient(redis.NewClient(opt))
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// NewWithClient wraps an existing client. The Cache takes ownership of it.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client and its pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func applyPoolDefaults(opt *redis.Options) {
	if opt.PoolSize == 0 {
		opt.PoolSize = poolDefaults.size
	}
	if opt.MinIdleConns == 0 {
		opt.MinIdleConns = poolDefaults.minIdle
	}
	if opt.PoolTimeout == 0 {
		opt.PoolTimeout = poolDefaults.waitTimeout
	}
	if opt.ConnMaxIdleTime == 0 {
		opt.ConnMaxIdleTime = poolDefaults.idleTimeout
	}
}
