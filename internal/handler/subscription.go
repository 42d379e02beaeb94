package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/playsight/backend/internal/models"
	"github.com/playsight/backend/internal/repository"
	"github.com/playsight/backend/internal/service"
)

// SubscriptionHandler sets user plans. In production the payment provider's
// webhook processor calls the same path; this surface exists for support
// staff and tests.
type SubscriptionHandler struct {
	repo    *repository.SubscriptionRepository
	service *service.SubscriptionService
}

func NewSubscriptionHandler(repo *repository.SubscriptionRepository, service *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		repo:    repo,
		service: service,
	}
}

type setSubscriptionRequest struct {
	Tier      string     `json:"tier" binding:"required,oneof=free basic pro elite"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Handles PUT /admin/subscriptions/:user_id
func (h *SubscriptionHandler) Set(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req setSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sub := &models.Subscription{
		UserID:    userID,
		Tier:      req.Tier,
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.repo.Upsert(ctx, sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Drop the cached tier so the new quota limits apply immediately.
	h.service.Invalidate(ctx, userID.String())

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"tier":       req.Tier,
		"expires_at": req.ExpiresAt,
	})
}

// Handles GET /admin/subscriptions/:user_id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx := c.Request.Context()
	tier, err := h.service.Resolve(ctx, userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"tier":    tier,
	})
}
