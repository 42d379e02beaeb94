package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Ledger is the administrative view over ban and violation state. It is not
// a separate datastore, just the same key conventions the limiter enforces
// with, so admin writes take effect on the very next request.
type Ledger struct {
	store CounterStore
}

func NewLedger(store CounterStore) *Ledger {
	return &Ledger{store: store}
}

// BanEntry is one active ban as listed by the admin surface.
type BanEntry struct {
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// ViolationEntry is one live violation counter.
type ViolationEntry struct {
	Kind      string `json:"kind"`
	Value     string `json:"value"`
	Count     int64  `json:"count"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// ListBans returns every active ban with its remaining TTL.
func (l *Ledger) ListBans(ctx context.Context) ([]BanEntry, error) {
	keys, err := l.store.Scan(ctx, banPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning bans: %w", err)
	}

	entries := make([]BanEntry, 0, len(keys))
	for _, key := range keys {
		id, err := ParseLedgerKey(key)
		if err != nil {
			continue
		}
		ttl, err := l.store.TTL(ctx, key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, BanEntry{
			Kind:      string(id.Kind),
			Value:     id.Value,
			ExpiresIn: int64(ttl.Seconds()),
		})
	}
	return entries, nil
}

// ListViolations returns every live violation counter with its count and
// remaining TTL.
func (l *Ledger) ListViolations(ctx context.Context) ([]ViolationEntry, error) {
	keys, err := l.store.Scan(ctx, violationPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning violations: %w", err)
	}

	entries := make([]ViolationEntry, 0, len(keys))
	for _, key := range keys {
		id, err := ParseLedgerKey(key)
		if err != nil {
			continue
		}
		count, err := l.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		ttl, err := l.store.TTL(ctx, key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ViolationEntry{
			Kind:      string(id.Kind),
			Value:     id.Value,
			Count:     count,
			ExpiresIn: int64(ttl.Seconds()),
		})
	}
	return entries, nil
}

// CreateBan blocks an identity for ttl starting now.
func (l *Ledger) CreateBan(ctx context.Context, id Identity, ttl time.Duration) error {
	until := time.Now().Add(ttl)
	return l.store.SetWithTTL(ctx, BanKey(id), fmt.Sprintf("%d", until.Unix()), ttl)
}

// DeleteBan lifts a ban and clears the identity's violation counter so the
// next violation starts escalation from scratch.
func (l *Ledger) DeleteBan(ctx context.Context, id Identity) error {
	return l.store.Delete(ctx, BanKey(id), ViolationKey(id))
}

// ClearViolations deletes every violation counter and returns how many were
// removed.
func (l *Ledger) ClearViolations(ctx context.Context) (int, error) {
	keys, err := l.store.Scan(ctx, violationPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scanning violations: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := l.store.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
