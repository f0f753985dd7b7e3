package api

import (
	"net/http"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler serves the conversation endpoints
type ConversationHandler struct {
	conversations *service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// RegisterRoutes mounts the conversation routes on rg
func (h *ConversationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversations", h.CreateConversation)
	rg.GET("/conversations/:conversation_id", h.GetConversation)
}

// CreateConversation handles POST /api/conversations
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	conv, err := h.conversations.CreateConversation(c.Request.Context(), req.UserID)
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// GetConversation handles GET /api/conversations/:conversation_id
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conv, err := h.conversations.GetConversation(c.Request.Context(), c.Param("conversation_id"))
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusOK, conv)
}
