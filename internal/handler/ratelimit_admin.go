package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playsight/backend/internal/config"
	"github.com/playsight/backend/internal/ratelimit"
)

// RateLimitAdminHandler exposes the ban/violation ledger to operators. It
// writes the same keys the limiter enforces with, so every change takes
// effect on the next request.
type RateLimitAdminHandler struct {
	ledger *ratelimit.Ledger
	quota  *ratelimit.QuotaService
	cfg    config.RateLimitConfig
}

func NewRateLimitAdminHandler(ledger *ratelimit.Ledger, quota *ratelimit.QuotaService, cfg config.RateLimitConfig) *RateLimitAdminHandler {
	return &RateLimitAdminHandler{
		ledger: ledger,
		quota:  quota,
		cfg:    cfg,
	}
}

// Handles GET /admin/rate-limit/config
func (h *RateLimitAdminHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"per_minute":            h.cfg.PerMinute,
		"per_hour":              h.cfg.PerHour,
		"ban_threshold":         h.cfg.BanThreshold,
		"ban_ttl_minutes":       h.cfg.BanTTLMinutes,
		"violation_ttl_minutes": h.cfg.ViolationTTLMinutes,
		"escalation_enabled":    h.cfg.EscalationEnabled,
		"exempt_paths":          h.cfg.ExemptPaths,
		"quotas":                h.quota.Policies(),
	})
}

// Handles GET /admin/rate-limit/bans
func (h *RateLimitAdminHandler) ListBans(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shared store not configured"})
		return
	}

	bans, err := h.ledger.ListBans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bans": bans, "count": len(bans)})
}

// Handles POST /admin/rate-limit/bans/:kind/:value
func (h *RateLimitAdminHandler) CreateBan(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shared store not configured"})
		return
	}

	identity, ok := h.identityFromPath(c)
	if !ok {
		return
	}

	ttl := time.Duration(h.cfg.BanTTLMinutes) * time.Minute
	if err := h.ledger.CreateBan(c.Request.Context(), identity, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"kind":        identity.Kind,
		"value":       identity.Value,
		"ttl_minutes": h.cfg.BanTTLMinutes,
	})
}

// Handles DELETE /admin/rate-limit/bans/:kind/:value
func (h *RateLimitAdminHandler) DeleteBan(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shared store not configured"})
		return
	}

	identity, ok := h.identityFromPath(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteBan(c.Request.Context(), identity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ban deleted"})
}

// Handles GET /admin/rate-limit/violations
func (h *RateLimitAdminHandler) ListViolations(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shared store not configured"})
		return
	}

	violations, err := h.ledger.ListViolations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"violations": violations, "count": len(violations)})
}

// Handles POST /admin/rate-limit/violations/cleanup
func (h *RateLimitAdminHandler) CleanupViolations(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shared store not configured"})
		return
	}

	removed, err := h.ledger.ClearViolations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *RateLimitAdminHandler) identityFromPath(c *gin.Context) (ratelimit.Identity, bool) {
	kind, err := ratelimit.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return ratelimit.Identity{}, false
	}

	value := c.Param("value")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return ratelimit.Identity{}, false
	}

	return ratelimit.Identity{Kind: kind, Value: value}, true
}
