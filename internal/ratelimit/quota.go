package ratelimit

import (
	"context"
	"log"
	"time"
)

// TierResolver looks up a user's current subscription level. Implemented by
// the subscription service; the quota service treats it as a collaborator.
type TierResolver interface {
	Resolve(ctx context.Context, userID string) (Tier, error)
}

// QuotaService gates expensive operations per user and subscription tier.
// Unlike the global limiter it has no local fallback: per-user quotas only
// mean something when every instance sees the same counters, so while the
// shared store is unreachable enforcement is skipped outright. It resumes as
// soon as the store answers again.
type QuotaService struct {
	store    CounterStore
	tiers    TierResolver
	policies PolicyTable
	metrics  MetricsSink

	// bypassUserID is exempt from all quotas.
	bypassUserID string
	now          func() time.Time
}

func NewQuotaService(store CounterStore, tiers TierResolver, policies PolicyTable, metrics MetricsSink, bypassUserID string) *QuotaService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &QuotaService{
		store:        store,
		tiers:        tiers,
		policies:     policies,
		metrics:      metrics,
		bypassUserID: bypassUserID,
		now:          time.Now,
	}
}

// Policies exposes the table for the admin config view.
func (q *QuotaService) Policies() PolicyTable {
	return q.policies
}

// Enforce counts one call of operation against userID's quota. It returns
// nil to allow or a *QuotaExceededError to deny. Minute and day budgets are
// independent: a call can be inside a fresh minute window and still trip the
// daily ceiling.
func (q *QuotaService) Enforce(ctx context.Context, userID, operation string) error {
	if q.bypassUserID != "" && userID == q.bypassUserID {
		return nil
	}
	if q.store == nil {
		return nil
	}

	tier := q.resolveTier(ctx, userID)

	policy, ok := q.policies.Lookup(operation, tier)
	if !ok {
		// Unknown operation or no row for this tier: not gated.
		return nil
	}

	if policy.PerMinute > 0 {
		count, ok := q.incr(ctx, QuotaMinuteKey(operation, userID), time.Minute)
		if !ok {
			return nil
		}
		if count > policy.PerMinute {
			q.metrics.QuotaDenied(operation, string(tier), string(WindowMinute))
			return &QuotaExceededError{Operation: operation, Tier: tier, Window: WindowMinute, Limit: policy.PerMinute}
		}
	}

	if policy.PerDay > 0 {
		// The UTC date is part of the key; the TTL only garbage-collects
		// yesterday's counters.
		count, ok := q.incr(ctx, QuotaDayKey(operation, userID, q.now()), 48*time.Hour)
		if !ok {
			return nil
		}
		if count > policy.PerDay {
			q.metrics.QuotaDenied(operation, string(tier), string(WindowDay))
			return &QuotaExceededError{Operation: operation, Tier: tier, Window: WindowDay, Limit: policy.PerDay}
		}
	}

	return nil
}

// resolveTier asks the subscription collaborator, falling back to free on
// any failure so a billing outage never blocks or over-grants.
func (q *QuotaService) resolveTier(ctx context.Context, userID string) Tier {
	if q.tiers == nil {
		return TierFree
	}
	tier, err := q.tiers.Resolve(ctx, userID)
	if err != nil {
		log.Printf("quota: tier lookup for user %s failed, assuming free: %v", userID, err)
		return TierFree
	}
	if tier == "" {
		return TierFree
	}
	return tier
}

// incr bumps one quota counter. ok is false when the store failed; the
// caller must then allow (fail-open, no degradation latch).
func (q *QuotaService) incr(ctx context.Context, key string, ttl time.Duration) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := incrWindow(ctx, q.store, key, ttl)
	if err != nil {
		log.Printf("quota: store unavailable, skipping enforcement: %v", err)
		return 0, false
	}
	return count, true
}
