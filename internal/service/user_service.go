package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/pkg/cache"
	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/middleware"
	"neurobridge/backend/pkg/observability"
	"neurobridge/backend/pkg/resilience"
)

const userCachePrefix = "user:id:"

// UserService fronts the user store with a lookaside cache. Cache failures
// never fail a request; the store stays authoritative.
type UserService struct {
	users   store.UserStore
	cache   cache.Cache
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewUserService creates a user service. A nil cache disables caching.
func NewUserService(users store.UserStore, c cache.Cache, ttl time.Duration, metrics *observability.Metrics, log *logger.Logger) *UserService {
	if log == nil {
		log = logger.GetGlobal()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &UserService{
		users:   users,
		cache:   c,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("user-cache"), log),
		ttl:     ttl,
		metrics: metrics,
		log:     log,
	}
}

// CreateUser stores a new user and primes the cache with it
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	var email *string
	if req.Email != "" {
		email = &req.Email
	}
	user, err := s.users.Create(ctx, req.Name, email)
	if err != nil {
		return models.User{}, err
	}
	s.store(ctx, user)
	return user, nil
}

// GetUser returns the user with id, consulting the cache first
func (s *UserService) GetUser(ctx context.Context, id string) (models.User, error) {
	if user, ok := s.lookup(ctx, id); ok {
		return user, nil
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	s.store(ctx, user)
	return user, nil
}

// CacheBreaker reports the state and counters of the breaker guarding the
// user cache
func (s *UserService) CacheBreaker() (resilience.CircuitBreakerState, map[string]any) {
	return s.breaker.GetState(), s.breaker.GetMetrics()
}

func (s *UserService) lookup(ctx context.Context, id string) (models.User, bool) {
	if s.cache == nil {
		return models.User{}, false
	}

	var data []byte
	err := s.breaker.Execute(func() error {
		var err error
		data, err = s.cache.Get(ctx, userCachePrefix+id)
		if errors.Is(err, cache.ErrMiss) {
			// a miss is a healthy answer
			return nil
		}
		return err
	})
	switch {
	case err != nil:
		s.metrics.CacheLookup(ctx, "error")
		s.log.Debug("User cache unavailable", "request_id", middleware.GetRequestID(ctx), "error", err.Error())
		return models.User{}, false
	case data == nil:
		s.metrics.CacheLookup(ctx, "miss")
		return models.User{}, false
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.metrics.CacheLookup(ctx, "error")
		s.log.Warn("Discarding undecodable cached user", "user_id", id, "error", err.Error())
		return models.User{}, false
	}

	// the store is authoritative; an entry can outlive the process that wrote it
	if !s.users.Exists(ctx, id) {
		s.metrics.CacheLookup(ctx, "stale")
		s.evict(ctx, id)
		return models.User{}, false
	}

	s.metrics.CacheLookup(ctx, "hit")
	return user, true
}

func (s *UserService) evict(ctx context.Context, id string) {
	if err := s.breaker.Execute(func() error {
		return s.cache.Delete(ctx, userCachePrefix+id)
	}); err != nil {
		s.log.Debug("Stale user not evicted", "user_id", id, "error", err.Error())
	}
}

func (s *UserService) store(ctx context.Context, user models.User) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.breaker.Execute(func() error {
		return s.cache.Set(ctx, userCachePrefix+user.ID, data, s.ttl)
	}); err != nil {
		s.log.Debug("User not cached", "request_id", middleware.GetRequestID(ctx), "error", err.Error())
	}
}
