// Package cache provides shared estimate cache backends.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Omri-Jukin/Portfolio-sub003/core/pricing"
	"github.com/Omri-Jukin/Portfolio-sub003/core/types"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/errors"
)

// DefaultPrefix namespaces estimate keys
const DefaultPrefix = "estimate:"

// RedisConfig holds connection settings
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

// RedisCache stores breakdowns as JSON with a TTL
type RedisCache struct {
	client redis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects and pings the server
func NewRedisCache(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.TypeCache, "redis connection failed", err).WithContext("addr", cfg.Addr)
	}

	c := WithClient(client, ttl)
	c.closer = client.Close
	return c, nil
}

// WithClient wraps an existing client
func WithClient(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: DefaultPrefix, ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get implements pricing.Cache
func (c *RedisCache) Get(ctx context.Context, key string) (*types.CostBreakdown, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.TypeCache, "redis get failed", err)
	}

	b, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set implements pricing.Cache
func (c *RedisCache) Set(ctx context.Context, key string, b *types.CostBreakdown) error {
	data, err := encode(b)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return errors.Wrap(errors.TypeCache, "redis set failed", err)
	}
	return nil
}

// Close closes the connection when the cache owns it
func (c *RedisCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func encode(b *types.CostBreakdown) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(errors.TypeCache, "failed to encode breakdown", err)
	}
	return data, nil
}

func decode(data []byte) (*types.CostBreakdown, error) {
	var b types.CostBreakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(errors.TypeCache, "failed to decode cached breakdown", err)
	}
	return &b, nil
}

var _ pricing.Cache = (*RedisCache)(nil)
