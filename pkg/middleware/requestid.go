package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Key types for context values
type contextKey string

const (
	// RequestIDKey is the key for request ID values in contexts
	RequestIDKey contextKey = "requestID"
	// ClientIDKey is the key for WebSocket client ID values in contexts
	ClientIDKey contextKey = "clientID"
)

// RequestContext copies the request ID assigned by the logging middleware and
// the :client_id path parameter into the request's context.Context so that
// stores and services receiving ctx can correlate their logs.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if requestID := c.GetString("requestID"); requestID != "" {
			ctx = context.WithValue(ctx, RequestIDKey, requestID)
		}
		if clientID := c.Param("client_id"); clientID != "" {
			ctx = context.WithValue(ctx, ClientIDKey, clientID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID extracts the request ID from a context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetClientID extracts the WebSocket client ID from a context
func GetClientID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if clientID, ok := ctx.Value(ClientIDKey).(string); ok {
		return clientID
	}
	return ""
}
