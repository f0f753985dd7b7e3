package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"neurobridge/backend/pkg/errors"
	"neurobridge/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NewUpgrader returns an upgrader accepting the given origins. "*" or an
// empty list allows any origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			_, ok := allowed[u.Scheme+"://"+u.Host]
			return ok
		},
	}
}

// ServeWs returns the gin handler for GET /ws/:client_id
func ServeWs(h *SessionHandler, upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Param("client_id")
		if clientID == "" {
			_ = c.Error(errors.NewBadRequestError(errors.CodeInvalidRequest, "client_id is required"))
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader has already written the HTTP error response
			logger.FromContext(c).Warn("WebSocket upgrade failed",
				"client_id", clientID,
				"error", err.Error(),
			)
			return
		}

		// the session outlives the HTTP handshake
		h.Serve(context.WithoutCancel(c.Request.Context()), clientID, conn)
	}
}
