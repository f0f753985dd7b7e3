package router

import (
	"os"
	"strings"

	"neurobridge/backend/internal/api"
	"neurobridge/backend/internal/ws"
	"neurobridge/backend/pkg/config"
	"neurobridge/backend/pkg/di"
	"neurobridge/backend/pkg/errors"
	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/middleware"
	"neurobridge/backend/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Router is the main router for the application
type Router struct {
	Engine      *gin.Engine
	Container   *di.Container
	Logger      *logger.Logger
	Config      *config.Config
	rateLimiter *middleware.RateLimiter
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := container.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(middleware.RequestContext())

	opts := middleware.DefaultRateLimiterOptions()
	opts.Limit = limit(cfg.Security.RateLimit)
	opts.Burst = cfg.Security.RateLimitBurst
	opts.Skip = func(c *gin.Context) bool {
		p := c.Request.URL.Path
		return p == "/health" || p == "/metrics" || strings.HasPrefix(p, "/static/")
	}
	rateLimiter := middleware.NewRateLimiter(container.Logger, opts)
	engine.Use(rateLimiter.Middleware())

	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))

	return &Router{
		Engine:      engine,
		Container:   container,
		Logger:      container.Logger,
		Config:      cfg,
		rateLimiter: rateLimiter,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	if path := r.Config.OpenAPI.SchemaPath; path != "" {
		r.addOpenAPIValidation(path)
	}

	c := r.Container

	api.NewHandler(c.Health, c.Registry).RegisterRoutes(r.Engine)

	apiRoutes := r.Engine.Group("/api")
	api.NewUserHandler(c.UserService, c.ConversationService).RegisterRoutes(apiRoutes)
	api.NewConversationHandler(c.ConversationService).RegisterRoutes(apiRoutes)
	api.NewEmotionHandler(c.Classifier).RegisterRoutes(apiRoutes)
	api.NewSummaryHandler(c.SummaryService, r.Config.Server.SafeMode).RegisterRoutes(apiRoutes)

	r.Engine.GET("/ws/:client_id", ws.ServeWs(c.Sessions, ws.NewUpgrader(r.Config.Security.AllowedOrigins)))

	if h := c.Observability.Handler(); h != nil {
		r.Engine.GET("/metrics", gin.WrapH(h))
	}

	if dir := r.Config.Server.StaticDir; dirExists(dir) {
		r.Engine.Static("/static", dir)
	} else {
		r.Logger.Info("Static directory not found, /static disabled", "path", dir)
	}
}

// Close stops background work owned by the router
func (r *Router) Close() {
	r.rateLimiter.Stop()
}

// addOpenAPIValidation validates requests against the schema at path and
// serves the schema itself under /api/docs
func (r *Router) addOpenAPIValidation(path string) {
	v, err := validator.NewOpenAPIValidator(path)
	if err != nil {
		r.Logger.LogError(err, "OpenAPI validation disabled", "path", path)
		return
	}

	r.Engine.Use(v.Middleware())
	r.Engine.StaticFile("/api/docs/openapi.yaml", path)
	r.Logger.Info("OpenAPI validation enabled", "schema", path)
}

// corsMiddleware allows the configured origins, including WebSocket upgrade
// headers
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case allowAll && origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		default:
			if _, ok := allowed[origin]; ok {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-Request-ID, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// dirExists checks if a path exists and is a directory
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
