package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by ViewCache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// NewRedis creates and validates a go-redis client connection.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// ViewCache stores serialized view payloads in Redis behind a circuit
// breaker. Keys are namespaced with "opsdash:view:".
type ViewCache struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *CircuitBreaker
}

func NewViewCache(rdb *redis.Client, ttl time.Duration, cb *CircuitBreaker) *ViewCache {
	return &ViewCache{rdb: rdb, ttl: ttl, cb: cb}
}

func viewKey(key string) string { return "opsdash:view:" + key }

// Get returns the cached bytes, ErrCacheMiss, ErrCircuitOpen or the Redis
// error. A miss does not count against the breaker.
func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	miss := false
	err := c.cb.Execute(func() error {
		b, err := c.rdb.Get(ctx, viewKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}
	if miss {
		return nil, ErrCacheMiss
	}
	return out, nil
}

// Set stores value for the configured TTL.
func (c *ViewCache) Set(ctx context.Context, key string, value []byte) error {
	return c.cb.Execute(func() error {
		return c.rdb.Set(ctx, viewKey(key), value, c.ttl).Err()
	})
}

// Status is the breaker state.
func (c *ViewCache) Status() string { return c.cb.State().String() }
