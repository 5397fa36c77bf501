// Package cache holds the star-system catalogue in Redis or memory so plan validation does not hit Postgres.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"gemini-observatory/backend/internal/starsystem/domain"
)

// DefaultTTL bounds how stale a cached catalogue can be.
const DefaultTTL = time.Hour

const catalogKey = "starsystems:catalog"

// Cache stores the whole catalogue as one value. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context) ([]*domain.StarSystem, error)
	Set(ctx context.Context, systems []*domain.StarSystem) error
	Invalidate(ctx context.Context) error
}

// RedisCache stores the catalogue as JSON under a single key.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]*domain.StarSystem, error) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var systems []*domain.StarSystem
	if err := json.Unmarshal(data, &systems); err != nil {
		return nil, err
	}
	return systems, nil
}

func (c *RedisCache) Set(ctx context.Context, systems []*domain.StarSystem) error {
	data, err := json.Marshal(systems)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}

// MemoryCache keeps the catalogue in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	systems []*domain.StarSystem
	expires time.Time
	ttl     time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context) ([]*domain.StarSystem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.systems == nil || time.Now().After(c.expires) {
		return nil, nil
	}
	return c.systems, nil
}

func (c *MemoryCache) Set(_ context.Context, systems []*domain.StarSystem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systems = systems
	c.expires = time.Now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systems = nil
	return nil
}
