// Package cache holds the read-through cache for prompt listings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache stores rendered list pages. Entries live under a generation;
// Invalidate starts a new one, which drops every cached page at once. A
// reader takes the generation once and fills a miss under that same
// generation, so a page built before an Invalidate is never stored as current.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string, dst any) (bool, error)
	Set(ctx context.Context, gen int64, key string, value any) error
	Invalidate(ctx context.Context) error
}

// Config holds Redis connection configuration.
type Config struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const connectionTimeout = 5 * time.Second

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisListCache namespaces entries by a generation counter. Bumping the
// counter orphans all previous entries, which then expire on their TTL.
type RedisListCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, prefix string, ttl time.Duration) *RedisListCache {
	return &RedisListCache{client: client, prefix: prefix, ttl: ttl}
}

// Generation returns the current generation, 0 before the first Invalidate.
func (c *RedisListCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisListCache) Get(ctx context.Context, gen int64, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache decode: %w", err)
	}
	return true, nil
}

func (c *RedisListCache) Set(ctx context.Context, gen int64, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *RedisListCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *RedisListCache) key(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

// NopListCache never hits. Used when Redis is not configured.
type NopListCache struct{}

func (NopListCache) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (NopListCache) Get(context.Context, int64, string, any) (bool, error) {
	return false, nil
}

func (NopListCache) Set(context.Context, int64, string, any) error {
	return nil
}

func (NopListCache) Invalidate(context.Context) error {
	return nil
}
