package api

import (
	"net/http"
	"time"

	"neurobridge/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// ConnectionCounter reports the number of live WebSocket clients
type ConnectionCounter interface {
	Count() int
}

// Handler serves the root status and health endpoints
type Handler struct {
	checker     *health.Checker
	connections ConnectionCounter
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string                       `json:"status"`
	Timestamp   time.Time                    `json:"timestamp"`
	Components  map[string]*health.Component `json:"components"`
	Connections int                          `json:"connections"`
}

// NewHandler creates the status handler
func NewHandler(checker *health.Checker, connections ConnectionCounter) *Handler {
	return &Handler{checker: checker, connections: connections}
}

// Root handles GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to NeuroBridge API",
		"status":  "running",
	})
}

// HealthHandler handles GET /health. It answers 503 while a critical
// component is down.
func (h *Handler) HealthHandler(c *gin.Context) {
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Components:  h.checker.GetStatus(),
		Connections: h.connections.Count(),
	}

	code := http.StatusOK
	if !h.checker.IsSystemHealthy() {
		response.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, response)
}

// RegisterRoutes registers the root and health routes
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", h.Root)
	router.GET("/health", h.HealthHandler)
}
