package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"neurobridge/backend/internal/emotion"
	"neurobridge/backend/internal/service"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/internal/ws"
	"neurobridge/backend/pkg/cache"
	"neurobridge/backend/pkg/config"
	"neurobridge/backend/pkg/health"
	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/observability"
	"neurobridge/backend/pkg/resilience"
	"neurobridge/backend/pkg/secrets"

	"github.com/google/uuid"
)

// Container holds all the dependencies for the application
type Container struct {
	Config              *config.Config
	Logger              *logger.Logger
	Observability       *observability.Provider
	Users               store.UserStore
	Conversations       store.ConversationStore
	Summaries           store.SummaryStore
	Secrets             secrets.Manager
	Cache               cache.Cache
	Classifier          emotion.Classifier
	UserService         *service.UserService
	ConversationService *service.ConversationService
	SummaryService      *service.SummaryService
	Registry            *ws.Registry
	Sessions            *ws.SessionHandler
	Health              *health.Checker

	closers []io.Closer
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	obs, err := observability.Setup(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		TracingEnabled: cfg.Observability.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}

	c := &Container{
		Config:        cfg,
		Logger:        log,
		Observability: obs,
		Classifier:    emotion.NewKeyword(),
	}

	users := store.NewMemoryUserStore()
	conversations := store.NewMemoryConversationStore(users)
	c.Users = users
	c.Conversations = conversations
	c.Summaries = store.NewMemorySummaryStore()

	secretManager, err := secrets.NewVaultManager(secrets.Config{
		Enabled:     cfg.Vault.Enabled,
		Address:     cfg.Vault.Address,
		Token:       cfg.Vault.Token,
		Namespace:   cfg.Vault.Namespace,
		MountPath:   cfg.Vault.MountPath,
		SecretsPath: cfg.Vault.SecretsPath,
		Timeout:     cfg.Vault.Timeout,
		MaxRetries:  cfg.Vault.MaxRetries,
		CacheTTL:    cfg.Vault.CacheTTL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up secrets: %w", err)
	}
	c.Secrets = secretManager

	secretCtx, cancel := context.WithTimeout(context.Background(), cfg.Vault.Timeout)
	redisURL := secretManager.GetSecretWithDefault(secretCtx, "redis_url", cfg.Redis.URL)
	cancel()

	if redisURL != "" {
		// users live only as long as this process, so neither may its cache entries
		prefix := "neurobridge:" + uuid.NewString() + ":"
		r, err := cache.NewRedis(redisURL, prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		c.Cache = r
		c.closers = append(c.closers, r)
		log.Info("User cache backed by Redis")
	} else {
		m := cache.NewMemory(10000, time.Minute)
		c.Cache = m
		c.closers = append(c.closers, m)
		log.Info("User cache kept in memory")
	}

	c.UserService = service.NewUserService(users, c.Cache, cfg.Redis.UserCacheTTL, obs.Metrics, log)
	c.ConversationService = service.NewConversationService(conversations, obs.Metrics, log)
	c.SummaryService = service.NewSummaryService(c.Summaries, log)

	c.Registry = ws.NewRegistry(log, obs.Metrics)
	c.Sessions = ws.NewSessionHandler(c.Registry, conversations, c.Classifier, ws.SessionConfig{
		Connection: ws.ConnectionConfig{
			SendBuffer:     cfg.WebSocket.SendBuffer,
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
			PongWait:       cfg.WebSocket.PongWait,
			WriteWait:      cfg.WebSocket.WriteWait,
		},
		Logger:  log,
		Metrics: obs.Metrics,
		Tracer:  obs.Tracer,
	})

	c.Health = health.NewChecker(log, 30*time.Second)
	c.Health.RegisterCheck("store", true, func(context.Context) (health.Status, string, error) {
		return health.StatusUp, fmt.Sprintf("%d users, %d conversations, %d session summaries",
			users.Count(), conversations.Count(), c.Summaries.Count()), nil
	})
	c.Health.RegisterCheck("websocket", false, func(context.Context) (health.Status, string, error) {
		return health.StatusUp, fmt.Sprintf("%d active connections", c.Registry.Count()), nil
	})
	c.Health.RegisterPingCheck("cache", c.Cache.Ping)
	c.Health.RegisterCheck("cache_breaker", false, func(context.Context) (health.Status, string, error) {
		state, m := c.UserService.CacheBreaker()
		desc := fmt.Sprintf("%s, %v rejected, %v failures", state, m["total_rejected"], m["total_failures"])
		if state == resilience.StateOpen {
			return health.StatusDegraded, desc, nil
		}
		return health.StatusUp, desc, nil
	})

	return c, nil
}

// Shutdown closes live sessions, flushes telemetry and releases the cache
func (c *Container) Shutdown(ctx context.Context) error {
	errs := []error{c.Sessions.Shutdown(ctx)}
	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, c.Observability.Shutdown(ctx))
	return errors.Join(errs...)
}
