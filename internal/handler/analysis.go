package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler fronts the expensive coaching operations. The quota
// middleware has already run by the time these execute; the actual model
// and demo-parser backends are separate services this handler calls out to.
type AnalysisHandler struct{}

func NewAnalysisHandler() *AnalysisHandler {
	return &AnalysisHandler{}
}

type aiAnalysisRequest struct {
	MatchID string `json:"match_id" binding:"required"`
	Focus   string `json:"focus"`
}

// Handles POST /api/analysis/ai
func (h *AnalysisHandler) AIAnalysis(c *gin.Context) {
	var req aiAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The coaching-model backend is an external collaborator; this echoes a
	// queued job so the quota path has a real caller.
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":    uuid.New().String(),
		"match_id":  req.MatchID,
		"focus":     req.Focus,
		"status":    "queued",
		"queued_at": time.Now().UTC(),
	})
}

type fileAnalysisRequest struct {
	FileURL string `json:"file_url" binding:"required,url"`
}

// Handles POST /api/analysis/file
func (h *AnalysisHandler) FileAnalysis(c *gin.Context) {
	var req fileAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":    uuid.New().String(),
		"file_url":  req.FileURL,
		"status":    "queued",
		"queued_at": time.Now().UTC(),
	})
}
