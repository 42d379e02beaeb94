package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the storage capability both limiters run on. The shared
// implementation is backed by redis; the local one is an in-process map used
// when redis is unreachable. Incr must be atomic across concurrent callers,
// which is the only correctness primitive the limiters rely on.
type CounterStore interface {
	// Incr atomically increments key and returns the new value. Keys are
	// created at 0 on first increment.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets a TTL on an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Get returns the counter value, or 0 if the key does not exist.
	Get(ctx context.Context, key string) (int64, error)

	// Exists reports whether key is present (and unexpired).
	Exists(ctx context.Context, key string) (bool, error)

	// TTL returns the remaining lifetime of key, or 0 if the key does not
	// exist or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// SetWithTTL writes a value with a lifetime, replacing any existing key.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Scan returns all keys matching a glob-style pattern such as
	// "rate:ban:*". Only used by the admin surface, never on the request
	// path.
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// incrWindow runs the two-step protocol for a fresh window bucket: increment,
// and if the result is 1, set the expiry. Concurrent first requests may each
// observe 1 and redundantly set the same TTL, which is harmless.
func incrWindow(ctx context.Context, store CounterStore, key string, ttl time.Duration) (int64, error) {
	count, err := store.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := store.Expire(ctx, key, ttl); err != nil {
			return count, err
		}
	}
	return count, nil
}
