package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerBanRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	id := Identity{Kind: KindIP, Value: "1.2.3.4"}

	bans, err := ledger.ListBans(ctx)
	require.NoError(t, err)
	assert.Empty(t, bans)

	require.NoError(t, ledger.CreateBan(ctx, id, 30*time.Minute))

	bans, err = ledger.ListBans(ctx)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "ip", bans[0].Kind)
	assert.Equal(t, "1.2.3.4", bans[0].Value)
	assert.InDelta(t, int64(1800), bans[0].ExpiresIn, 5)

	require.NoError(t, ledger.DeleteBan(ctx, id))

	bans, err = ledger.ListBans(ctx)
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestLedgerDeleteBanClearsViolations(t *testing.T) {
	store, server := newTestRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	id := Identity{Kind: KindUser, Value: "u-1"}

	_, err := incrWindow(ctx, store, ViolationKey(id), 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, ledger.CreateBan(ctx, id, time.Hour))

	require.NoError(t, ledger.DeleteBan(ctx, id))

	assert.False(t, server.Exists(BanKey(id)))
	assert.False(t, server.Exists(ViolationKey(id)))
}

func TestLedgerListViolations(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	first := Identity{Kind: KindIP, Value: "1.2.3.4"}
	second := Identity{Kind: KindUser, Value: "u-1"}

	for i := 0; i < 3; i++ {
		_, err := incrWindow(ctx, store, ViolationKey(first), 5*time.Minute)
		require.NoError(t, err)
	}
	_, err := incrWindow(ctx, store, ViolationKey(second), 5*time.Minute)
	require.NoError(t, err)

	violations, err := ledger.ListViolations(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 2)

	byValue := map[string]ViolationEntry{}
	for _, v := range violations {
		byValue[v.Value] = v
	}
	assert.Equal(t, int64(3), byValue["1.2.3.4"].Count)
	assert.Equal(t, "ip", byValue["1.2.3.4"].Kind)
	assert.Equal(t, int64(1), byValue["u-1"].Count)
	assert.Equal(t, "user", byValue["u-1"].Kind)
	assert.Greater(t, byValue["1.2.3.4"].ExpiresIn, int64(0))
}

func TestLedgerClearViolations(t *testing.T) {
	store, server := newTestRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()

	for _, value := range []string{"1.2.3.4", "5.6.7.8", "9.9.9.9"} {
		id := Identity{Kind: KindIP, Value: value}
		_, err := incrWindow(ctx, store, ViolationKey(id), 5*time.Minute)
		require.NoError(t, err)
	}
	// Bans are untouched by a violation cleanup.
	require.NoError(t, ledger.CreateBan(ctx, Identity{Kind: KindIP, Value: "1.2.3.4"}, time.Hour))

	removed, err := ledger.ClearViolations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	violations, err := ledger.ListViolations(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.True(t, server.Exists(BanKey(Identity{Kind: KindIP, Value: "1.2.3.4"})))

	removed, err = ledger.ClearViolations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
