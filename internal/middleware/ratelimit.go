package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playsight/backend/internal/ratelimit"
)

// RateLimit applies the global request limiter to every route outside the
// exempt set. Denials are 429s with the limiter's own message; the limiter
// never errors, so this middleware can never 500.
func RateLimit(limiter *ratelimit.Limiter, exemptPaths []string) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		exempt[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		identity := ResolveIdentity(c)

		if err := limiter.Check(c.Request.Context(), identity); err != nil {
			abortTooManyRequests(c, err)
			return
		}

		c.Next()
	}
}

// abortTooManyRequests writes the 429 body for any limiter or quota denial.
func abortTooManyRequests(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}

	var banned *ratelimit.BannedError
	var exceeded *ratelimit.RateExceededError
	var quota *ratelimit.QuotaExceededError

	switch {
	case errors.As(err, &banned):
		body["reason"] = "banned"
	case errors.As(err, &exceeded):
		body["reason"] = "rate_exceeded"
		body["window"] = string(exceeded.Window)
		body["limit"] = exceeded.Limit
	case errors.As(err, &quota):
		body["reason"] = "quota_exceeded"
		body["window"] = string(quota.Window)
		body["limit"] = quota.Limit
		body["operation"] = quota.Operation
	}

	c.JSON(http.StatusTooManyRequests, body)
	c.Abort()
}

// EnforceQuota gates one named operation behind the quota service. Attach it
// after RequireAuth so user_id is populated.
func EnforceQuota(quota *ratelimit.QuotaService, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if err := quota.Enforce(c.Request.Context(), userID, operation); err != nil {
			abortTooManyRequests(c, err)
			return
		}

		c.Next()
	}
}
