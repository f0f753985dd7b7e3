package api

import (
	"net/http"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SummaryHandler serves the emotion summary and dashboard endpoints
type SummaryHandler struct {
	summaries *service.SummaryService
	safeMode  bool
}

// NewSummaryHandler creates a new SummaryHandler. In safe mode summaries
// are acknowledged but never stored.
func NewSummaryHandler(summaries *service.SummaryService, safeMode bool) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, safeMode: safeMode}
}

// RegisterRoutes mounts the summary routes on rg
func (h *SummaryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/emotion-summary", h.skipInSafeMode, h.SaveSummary)
	rg.GET("/dashboard/:session_id", h.Dashboard)
}

func (h *SummaryHandler) skipInSafeMode(c *gin.Context) {
	if !h.safeMode {
		c.Next()
		return
	}
	c.AbortWithStatusJSON(http.StatusOK, gin.H{
		"status":  "safe_mode",
		"message": "Running in safe mode - no summaries stored",
	})
}

// SaveSummary handles POST /api/emotion-summary
func (h *SummaryHandler) SaveSummary(c *gin.Context) {
	var req models.SaveSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	saved, err := h.summaries.SaveSummary(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": saved})
}

// Dashboard handles GET /api/dashboard/:session_id
func (h *SummaryHandler) Dashboard(c *gin.Context) {
	data, err := h.summaries.Dashboard(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}
