package ratelimit

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// storeTimeout bounds every shared-store round-trip on the request path.
const storeTimeout = time.Second

// LimiterConfig holds the global request limiter settings.
type LimiterConfig struct {
	PerMinute int64
	PerHour   int64

	// A violation is one rejected request. Once an identity accumulates
	// BanThreshold violations inside ViolationTTL, it is banned for BanTTL.
	BanThreshold int64
	BanTTL       time.Duration
	ViolationTTL time.Duration
	EscalationOn bool

	// BypassIdentity skips all checks, used for internal health probers and
	// load tests. Matched against the raw identity value.
	BypassIdentity string
}

// Limiter enforces per-identity minute and hour request budgets with ban
// escalation. One instance is shared by every request handler; it holds no
// per-request state and relies on the store's atomic increments, so it is
// safe for concurrent use without locking.
//
// Availability beats strict enforcement: the first failed shared-store call
// permanently degrades this instance to local in-process counters, and ban
// lookups are skipped from then on. A limiter failure must never fail a
// request.
type Limiter struct {
	cfg     LimiterConfig
	shared  CounterStore
	local   CounterStore
	metrics MetricsSink

	degraded atomic.Bool
	now      func() time.Time
}

// NewLimiter builds a limiter over a shared store. A nil shared store starts
// the limiter in local-only mode rather than failing.
func NewLimiter(cfg LimiterConfig, shared CounterStore, metrics MetricsSink) *Limiter {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	l := &Limiter{
		cfg:     cfg,
		shared:  shared,
		local:   NewLocalStore(),
		metrics: metrics,
		now:     time.Now,
	}
	if shared == nil {
		log.Println("rate limiter: no shared store configured, using local counters")
		l.degraded.Store(true)
	}
	return l
}

// Degraded reports whether this instance has fallen back to local counters.
func (l *Limiter) Degraded() bool {
	return l.degraded.Load()
}

// store returns the counter store to enforce against.
func (l *Limiter) store() CounterStore {
	if l.degraded.Load() {
		return l.local
	}
	return l.shared
}

// degrade flips this instance to local counters for the rest of its life.
func (l *Limiter) degrade(op string, err error) {
	if l.degraded.CompareAndSwap(false, true) {
		log.Printf("rate limiter: shared store failed during %s, switching to local counters: %v", op, err)
	}
}

// Check applies the global limit to one request. It returns nil to allow, a
// *BannedError or *RateExceededError to deny. Store failures never surface:
// they degrade the limiter and the request is allowed.
func (l *Limiter) Check(ctx context.Context, id Identity) error {
	if l.cfg.BypassIdentity != "" && id.Value == l.cfg.BypassIdentity {
		return nil
	}

	if err := l.CheckBan(ctx, id); err != nil {
		return err
	}

	now := l.now()
	minuteCount, ok := l.incr(ctx, RequestKey(id, WindowMinute, now), time.Minute)
	if !ok {
		return nil
	}
	hourCount, ok := l.incr(ctx, RequestKey(id, WindowHour, now), time.Hour)
	if !ok {
		return nil
	}

	if l.cfg.PerMinute > 0 && minuteCount > l.cfg.PerMinute {
		return l.violation(ctx, id, WindowMinute, l.cfg.PerMinute)
	}
	if l.cfg.PerHour > 0 && hourCount > l.cfg.PerHour {
		return l.violation(ctx, id, WindowHour, l.cfg.PerHour)
	}

	return nil
}

// CheckBan only consults the ban ledger. The auth middleware calls it for
// user identities once a token is validated. Ban lookups are skipped in
// degraded mode: the ledger lives in the shared store only.
func (l *Limiter) CheckBan(ctx context.Context, id Identity) error {
	if l.degraded.Load() {
		return nil
	}
	if l.cfg.BypassIdentity != "" && id.Value == l.cfg.BypassIdentity {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	banned, err := l.shared.Exists(ctx, BanKey(id))
	if err != nil {
		l.degrade("ban check", err)
		return nil
	}
	if banned {
		return &BannedError{Identity: id}
	}
	return nil
}

// incr bumps one window counter. ok is false when the store failed, which
// means the caller should allow the request.
func (l *Limiter) incr(ctx context.Context, key string, ttl time.Duration) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := incrWindow(ctx, l.store(), key, ttl)
	if err != nil {
		l.degrade("counter increment", err)
		return 0, false
	}
	return count, true
}

// violation records a rejected request and escalates to a ban once the
// identity crosses the threshold.
func (l *Limiter) violation(ctx context.Context, id Identity, w Window, limit int64) error {
	l.metrics.RateLimitDenied(string(id.Kind), string(w))

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, err := incrWindow(ctx, l.store(), ViolationKey(id), l.cfg.ViolationTTL)
	if err != nil {
		l.degrade("violation increment", err)
		return &RateExceededError{Window: w, Limit: limit}
	}
	l.metrics.ViolationRecorded(string(id.Kind))

	// Escalation is inert in degraded mode: a local ban would only cover
	// this instance and would outlive the outage unpredictably.
	if l.cfg.EscalationOn && count >= l.cfg.BanThreshold && !l.degraded.Load() {
		until := l.now().Add(l.cfg.BanTTL)
		if err := l.shared.SetWithTTL(ctx, BanKey(id), fmt.Sprintf("%d", until.Unix()), l.cfg.BanTTL); err != nil {
			l.degrade("ban create", err)
		} else {
			l.metrics.BanCreated(string(id.Kind))
			log.Printf("rate limiter: banned %s until %s after %d violations", id, until.UTC().Format(time.RFC3339), count)
		}
	}

	return &RateExceededError{Window: w, Limit: limit}
}
