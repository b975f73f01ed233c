package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service stores JSON-encodable values under string keys.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// GetOrLoad returns the cached value for key, or calls load and caches its result.
// Load errors are returned as-is and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c != nil {
		if err := c.Get(ctx, key, &out); err == nil {
			return out, nil
		}
	}

	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		_ = c.Set(ctx, key, out, ttl)
	}
	return out, nil
}
