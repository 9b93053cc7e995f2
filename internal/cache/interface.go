package cache

import (
	"context"
	"time"
)

// Cache stores JSON encoded values under string keys.
type Cache interface {
	// Get reports false with a nil error on a miss.
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const ItemKeyPrefix = "item"

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

// ErrorHook receives the cache failures that ReadThrough does not return.
type ErrorHook func(op, key string, err error)

// ReadThrough returns the value cached under key, or calls load and caches
// what it returns. A nil cache always loads. Cache failures are passed to
// onErr and never fail the call; load errors are returned as is and nothing
// is cached for them.
func ReadThrough[T any](ctx context.Context, c Cache, key string, load func(context.Context) (*T, error), onErr ErrorHook) (*T, error) {

	if onErr == nil {
		onErr = func(string, string, error) {}
	}

	if c != nil {
		var cached T

		found, err := c.Get(ctx, key, &cached)
		if err != nil {
			onErr("read", key, err)
		} else if found {
			return &cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if c != nil {
		if err := c.Set(ctx, key, value, 0); err != nil {
			onErr("write", key, err)
		}
	}

	return value, nil
}
