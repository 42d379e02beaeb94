package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playsight/backend/internal/ratelimit"
	"github.com/playsight/backend/internal/service"
)

// RequireAuth validates the bearer token and stores the user identity in the
// context. Once the user is known, the ban ledger is consulted again under
// the user identity: admin bans on a user id must hold even when the request
// arrives from a fresh IP.
func RequireAuth(authService *service.AuthService, limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)

		if limiter != nil && userID != "" {
			identity := ratelimit.Identity{Kind: ratelimit.KindUser, Value: userID}
			if err := limiter.CheckBan(c.Request.Context(), identity); err != nil {
				abortTooManyRequests(c, err)
				return
			}
		}

		// Store user info in context
		c.Set("user_id", userID)
		c.Set("email", claims["email"])
		c.Set("role", claims["role"])

		c.Next()
	}
}

// RequireRole restricts a route group to users carrying a role claim.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != role {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
