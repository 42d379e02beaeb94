package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTiers resolves every user to one tier.
type staticTiers struct {
	tier Tier
	err  error
}

func (s staticTiers) Resolve(context.Context, string) (Tier, error) {
	return s.tier, s.err
}

func testPolicies() PolicyTable {
	return PolicyTable{
		"ai_analysis": {
			TierFree: {PerMinute: 1, PerDay: 5},
			TierPro:  {PerMinute: 10, PerDay: 100},
		},
	}
}

func TestQuotaMinuteLimit(t *testing.T) {
	store, _ := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	ctx := context.Background()

	require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))

	err := quota.Enforce(ctx, "u-1", "ai_analysis")
	var exceeded *QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, WindowMinute, exceeded.Window)
	assert.Equal(t, int64(1), exceeded.Limit)
	assert.Contains(t, err.Error(), "1 requests per minute")
}

func TestQuotaDayLimitIndependentOfMinute(t *testing.T) {
	store, server := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	// Pin the date so the day key cannot roll over mid-test.
	at := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	quota.now = func() time.Time { return at }

	ctx := context.Background()

	// One call per minute stays inside the minute budget; the daily ceiling
	// of 5 still applies cumulatively.
	for i := 0; i < 5; i++ {
		require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"), "call %d", i+1)
		server.FastForward(61 * time.Second)
	}

	err := quota.Enforce(ctx, "u-1", "ai_analysis")
	var exceeded *QuotaExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, WindowDay, exceeded.Window)
	assert.Contains(t, err.Error(), "upgrade your plan")
}

func TestQuotaTierSelectsPolicy(t *testing.T) {
	store, _ := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{tier: TierPro}, testPolicies(), nil, "")

	ctx := context.Background()

	// Pro gets 10 per minute where free gets 1.
	for i := 0; i < 10; i++ {
		require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
	}
	require.Error(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
}

func TestQuotaUngatedOperationAllowed(t *testing.T) {
	store, _ := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, quota.Enforce(ctx, "u-1", "stats_lookup"))
	}
}

func TestQuotaBypassUser(t *testing.T) {
	store, _ := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{tier: TierFree}, testPolicies(), nil, "load-test-user")

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, quota.Enforce(ctx, "load-test-user", "ai_analysis"))
	}
}

func TestQuotaTierLookupFailureFallsBackToFree(t *testing.T) {
	store, _ := newTestRedisStore(t)
	quota := NewQuotaService(store, staticTiers{err: errors.New("billing down")}, testPolicies(), nil, "")

	ctx := context.Background()

	require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
	// Free tier limits apply, not a hard failure.
	require.Error(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
}

func TestQuotaSkipsEnforcementWhileStoreDown(t *testing.T) {
	quota := NewQuotaService(failingStore{}, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
	}
}

// toggleStore fails until recovered is set, then delegates to the real
// store.
type toggleStore struct {
	*RedisStore
	recovered bool
}

func (s *toggleStore) Incr(ctx context.Context, key string) (int64, error) {
	if !s.recovered {
		return 0, errStoreDown
	}
	return s.RedisStore.Incr(ctx, key)
}

func TestQuotaResumesAfterStoreRecovery(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	store := &toggleStore{RedisStore: redisStore}
	quota := NewQuotaService(store, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	ctx := context.Background()

	// Outage: everything is allowed, no latch.
	for i := 0; i < 5; i++ {
		require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
	}

	// Recovery: enforcement resumes on the next call.
	store.recovered = true
	require.NoError(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
	require.Error(t, quota.Enforce(ctx, "u-1", "ai_analysis"))
}

func TestQuotaNilStoreAllows(t *testing.T) {
	quota := NewQuotaService(nil, staticTiers{tier: TierFree}, testPolicies(), nil, "")

	for i := 0; i < 10; i++ {
		require.NoError(t, quota.Enforce(context.Background(), "u-1", "ai_analysis"))
	}
}

func TestPolicyTableLookup(t *testing.T) {
	table := testPolicies()

	policy, ok := table.Lookup("ai_analysis", TierFree)
	require.True(t, ok)
	assert.Equal(t, int64(1), policy.PerMinute)
	assert.Equal(t, int64(5), policy.PerDay)

	_, ok = table.Lookup("ai_analysis", TierElite)
	assert.False(t, ok)

	_, ok = table.Lookup("demo_parse", TierFree)
	assert.False(t, ok)
}
