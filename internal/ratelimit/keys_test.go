package ratelimit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerKeys(t *testing.T) {
	tt := []struct {
		desc string
		key  string
		id   Identity
	}{
		{
			desc: "ip ban key",
			key:  "rate:ban:ip:1.2.3.4",
			id:   Identity{Kind: KindIP, Value: "1.2.3.4"},
		},
		{
			desc: "user ban key",
			key:  "rate:ban:user:8b7d3c1a",
			id:   Identity{Kind: KindUser, Value: "8b7d3c1a"},
		},
		{
			desc: "ip violation key",
			key:  "rate:viol:ip:10.0.0.1",
			id:   Identity{Kind: KindIP, Value: "10.0.0.1"},
		},
	}

	for _, ts := range tt {
		t.Run(ts.desc, func(t *testing.T) {
			var built string
			if strings.HasPrefix(ts.key, banPrefix) {
				built = BanKey(ts.id)
			} else {
				built = ViolationKey(ts.id)
			}
			assert.Equal(t, ts.key, built)

			parsed, err := ParseLedgerKey(ts.key)
			require.NoError(t, err)
			assert.Equal(t, ts.id, parsed)
		})
	}
}

func TestParseLedgerKeyRejectsGarbage(t *testing.T) {
	for _, key := range []string{
		"rate:req:ip:1.2.3.4:minute:123",
		"rate:ban:bogus:1.2.3.4",
		"rate:ban:ip",
		"sub:tier:abc",
	} {
		_, err := ParseLedgerKey(key)
		assert.Error(t, err, key)
	}
}

func TestRequestKeyBuckets(t *testing.T) {
	id := Identity{Kind: KindIP, Value: "1.2.3.4"}
	base := time.Date(2025, time.March, 10, 12, 30, 15, 0, time.UTC)

	// Same minute bucket regardless of seconds.
	assert.Equal(t,
		RequestKey(id, WindowMinute, base),
		RequestKey(id, WindowMinute, base.Add(40*time.Second)),
	)

	// Crossing the minute boundary yields a fresh key.
	assert.NotEqual(t,
		RequestKey(id, WindowMinute, base),
		RequestKey(id, WindowMinute, base.Add(time.Minute)),
	)

	// The hour key is stable across minutes.
	assert.Equal(t,
		RequestKey(id, WindowHour, base),
		RequestKey(id, WindowHour, base.Add(20*time.Minute)),
	)
}

func TestQuotaKeys(t *testing.T) {
	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "rl:op:ai_analysis:user:u-1:minute", QuotaMinuteKey("ai_analysis", "u-1"))
	assert.Equal(t, "rl:op:ai_analysis:user:u-1:day:20250310", QuotaDayKey("ai_analysis", "u-1", now))

	// Day keys roll over at UTC midnight.
	assert.Equal(t, "rl:op:ai_analysis:user:u-1:day:20250311", QuotaDayKey("ai_analysis", "u-1", now.Add(time.Minute)))
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("ip")
	require.NoError(t, err)
	assert.Equal(t, KindIP, kind)

	kind, err = ParseKind("user")
	require.NoError(t, err)
	assert.Equal(t, KindUser, kind)

	_, err = ParseKind("tenant")
	assert.Error(t, err)
}
