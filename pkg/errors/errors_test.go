package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	notFound := NewNotFoundError(CodeUserNotFound, "User not found")
	assert.Same(t, notFound, FromError(notFound))
	assert.Same(t, notFound, FromError(fmt.Errorf("lookup: %w", notFound)))

	cause := stderrors.New("disk on fire")
	converted := FromError(cause)
	assert.Equal(t, http.StatusInternalServerError, converted.StatusCode)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.ErrorIs(t, converted, cause)
}

func TestStatusAndCodeHelpers(t *testing.T) {
	err := NewNotFoundError(CodeConversationNotFound, "Conversation not found")
	assert.Equal(t, http.StatusNotFound, GetStatusCode(err))
	assert.Equal(t, CodeConversationNotFound, GetErrorCode(err))
	assert.True(t, Is(err, NewNotFoundError(CodeConversationNotFound, "")))
	assert.False(t, Is(err, NewNotFoundError(CodeUserNotFound, "")))

	plain := stderrors.New("plain")
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(plain))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(plain))
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(RecoveryWithLogger())
	return r
}

func TestErrorHandlerRendersEnvelope(t *testing.T) {
	r := newTestEngine()
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(BadRequestWithDetails(CodeInvalidRequest, "name is required", "name"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInvalidRequest, body.Error.Code)
	assert.Equal(t, "name is required", body.Error.Message)
	assert.Equal(t, "name", body.Error.Details)
}

func TestRecoveryWithLogger(t *testing.T) {
	r := newTestEngine()
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), CodeServer)
}
