package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playsight/backend/internal/ratelimit"
)

// ResolveIdentity derives the rate-limiting identity for a request. An
// authenticated user id (set by RequireAuth) wins; otherwise the client IP,
// read from the forwarded-for header first since the service sits behind a
// trusted proxy in production.
func ResolveIdentity(c *gin.Context) ratelimit.Identity {
	if userID := c.GetString("user_id"); userID != "" {
		return ratelimit.Identity{Kind: ratelimit.KindUser, Value: userID}
	}

	return ratelimit.Identity{Kind: ratelimit.KindIP, Value: clientIP(c)}
}

func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}

	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	return "unknown"
}
