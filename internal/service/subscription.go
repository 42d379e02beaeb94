package service

import (
	"context"
	"fmt"
	"time"

	"github.com/playsight/backend/internal/ratelimit"
	"github.com/playsight/backend/internal/repository"
	"github.com/playsight/backend/internal/storage"
)

const tierCacheTTL = 5 * time.Minute

// SubscriptionService resolves a user's tier for the quota service. Lookups
// hit a short-lived redis cache first; the database is the source of truth.
// It satisfies ratelimit.TierResolver.
type SubscriptionService struct {
	repo  *repository.SubscriptionRepository
	redis *storage.RedisClient
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, redis *storage.RedisClient) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		redis: redis,
	}
}

// Resolve returns the user's current tier. A missing or expired subscription
// is the free tier, not an error.
func (s *SubscriptionService) Resolve(ctx context.Context, userID string) (ratelimit.Tier, error) {
	cacheKey := fmt.Sprintf("sub:tier:%s", userID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey); err == nil && cached != "" {
			return ratelimit.Tier(cached), nil
		}
	}

	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return ratelimit.TierFree, err
	}

	tier := ratelimit.TierFree
	if sub != nil && sub.Active() {
		tier = ratelimit.Tier(sub.Tier)
	}

	if s.redis != nil {
		s.redis.Set(ctx, cacheKey, string(tier), tierCacheTTL)
	}

	return tier, nil
}

// Invalidate drops the cached tier, called after a plan change so the new
// limits apply without waiting out the TTL.
func (s *SubscriptionService) Invalidate(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, fmt.Sprintf("sub:tier:%s", userID))
}
