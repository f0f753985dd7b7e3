package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"neurobridge/backend/pkg/config"
	"neurobridge/backend/pkg/di"
	"neurobridge/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, mutate func(*config.Config)) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("REDIS_URL", "")
	t.Setenv("VAULT_ENABLED", "")
	t.Setenv("SAFE_MODE", "")

	cfg := config.Load()
	cfg.Server.StaticDir = t.TempDir()
	cfg.Security.RateLimit = 1000
	cfg.Security.RateLimitBurst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	container, err := di.New(cfg, logger.Discard())
	require.NoError(t, err)

	r := New(container)
	r.SetupRoutes()
	t.Cleanup(func() {
		r.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = container.Shutdown(ctx)
	})
	return r
}

func serve(r *Router, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRootAndHealthRoutes(t *testing.T) {
	r := setupRouter(t, nil)
	r.Container.Health.RunChecks(context.Background())

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to NeuroBridge API")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body["components"], "store")
	assert.Contains(t, body["components"], "cache")
}

func TestUserAndConversationFlow(t *testing.T) {
	r := setupRouter(t, nil)

	w := serve(r, http.MethodPost, "/api/users?name=Ada")
	require.Equal(t, http.StatusCreated, w.Code)
	var user struct{ ID string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))

	w = serve(r, http.MethodPost, "/api/conversations?user_id="+user.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/users/"+user.ID+"/conversations")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/conversations/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CONVERSATION_NOT_FOUND")
}

func TestMetricsRoute(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) { cfg.Observability.MetricsEnabled = true })

	w := serve(r, http.MethodPost, "/api/users?name=Ada")
	require.Equal(t, http.StatusCreated, w.Code)
	var user struct{ ID string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/users/"+user.ID).Code)

	w = serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user_cache_lookups_total")
	assert.Contains(t, w.Body.String(), `result="hit"`)
}

func TestMetricsDisabled(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) { cfg.Observability.MetricsEnabled = false })

	w := serve(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticFiles(t *testing.T) {
	r := setupRouter(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(r.Config.Server.StaticDir, "app.js"), []byte("console.log('hi')"), 0o600))

	w := serve(r, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log('hi')")
}

func TestRateLimit(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = 0.001
		cfg.Security.RateLimitBurst = 1
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)
	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	// health stays reachable
	assert.NotEqual(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/health").Code)
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) {
		cfg.Security.AllowedOrigins = []string{"https://app.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenAPIValidation(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) {
		cfg.OpenAPI.SchemaPath = filepath.Join("..", "..", "api", "openapi.yaml")
	})

	w := serve(r, http.MethodPost, "/api/users?name=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")

	w = serve(r, http.MethodPost, "/api/users?name=Ada")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/docs/openapi.yaml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "NeuroBridge API")
}

func TestWebSocketRoute(t *testing.T) {
	r := setupRouter(t, nil)
	srv := httptest.NewServer(r.Engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "content": "this is awesome"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame struct {
		Type    string `json:"type"`
		Message struct {
			Emotion string `json:"emotion"`
		} `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "message", frame.Type)
	assert.Equal(t, "happy", frame.Message.Emotion)
	assert.Equal(t, 1, r.Container.Registry.Count())
}

func TestEmotionSummaryRoutes(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/emotion-summary",
		strings.NewReader(`{"session_id":"s1","empathy_score":0.5,"emotion_timeline":{"emotions":[{"emotion":"calm"}]}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/dashboard/s1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"emotion_distribution":{"calm":1}`)
}

func TestEmotionSummarySafeMode(t *testing.T) {
	r := setupRouter(t, func(cfg *config.Config) { cfg.Server.SafeMode = true })

	req := httptest.NewRequest(http.MethodPost, "/api/emotion-summary", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safe_mode")
}
