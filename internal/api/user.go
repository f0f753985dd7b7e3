package api

import (
	"net/http"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the user endpoints
type UserHandler struct {
	users         *service.UserService
	conversations *service.ConversationService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *service.UserService, conversations *service.ConversationService) *UserHandler {
	return &UserHandler{users: users, conversations: conversations}
}

// RegisterRoutes mounts the user routes on rg
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.CreateUser)
	rg.GET("/users/:user_id", h.GetUser)
	rg.GET("/users/:user_id/conversations", h.ListUserConversations)
}

// CreateUser handles POST /api/users. name and email are read from the
// query string, a form body or JSON.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /api/users/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUserConversations handles GET /api/users/:user_id/conversations
func (h *UserHandler) ListUserConversations(c *gin.Context) {
	convs, err := h.conversations.ListUserConversations(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(storeError(err))
		return
	}
	c.JSON(http.StatusOK, convs)
}
