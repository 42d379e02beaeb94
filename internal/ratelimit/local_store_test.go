package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(start time.Time) (*LocalStore, *time.Time) {
	now := start
	store := NewLocalStore()
	store.now = func() time.Time { return now }
	return store, &now
}

func TestLocalStoreIncrAndExpiry(t *testing.T) {
	ctx := context.Background()
	store, now := newTestLocalStore(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))

	count, err := store.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.Expire(ctx, "k", time.Minute))

	count, err = store.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ttl, err := store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	// Past the TTL the key is gone and the counter restarts.
	*now = now.Add(61 * time.Second)

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err = store.Incr(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLocalStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestLocalStore(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))

	require.NoError(t, store.SetWithTTL(ctx, "ban", "1741608000", time.Hour))

	exists, err := store.Exists(ctx, "ban")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "ban", "missing"))

	exists, err = store.Exists(ctx, "ban")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := store.Get(ctx, "never-set")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestLocalStoreScan(t *testing.T) {
	ctx := context.Background()
	store, now := newTestLocalStore(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))

	require.NoError(t, store.SetWithTTL(ctx, "rate:ban:ip:1.2.3.4", "1", time.Hour))
	require.NoError(t, store.SetWithTTL(ctx, "rate:ban:user:u-1", "1", time.Second))
	require.NoError(t, store.SetWithTTL(ctx, "rate:viol:ip:1.2.3.4", "3", time.Hour))

	keys, err := store.Scan(ctx, "rate:ban:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rate:ban:ip:1.2.3.4", "rate:ban:user:u-1"}, keys)

	// Expired entries drop out of scans.
	*now = now.Add(2 * time.Second)

	keys, err = store.Scan(ctx, "rate:ban:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rate:ban:ip:1.2.3.4"}, keys)
}

func TestLocalStoreConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore()

	const workers = 16
	const perWorker = 100

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < perWorker; j++ {
				_, err := store.Incr(ctx, "shared")
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	count, err := store.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), count)
}
