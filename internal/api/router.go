package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/culinara/culinara/internal/cache"
	"github.com/culinara/culinara/internal/feed"
	"github.com/culinara/culinara/internal/middleware"
	"github.com/culinara/culinara/pkg/config"
	"github.com/culinara/culinara/pkg/logging"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router sets up API routes
type Router struct {
	engine   *feed.Engine
	database HealthChecker
	cache    *cache.Cache
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter creates a new API router. redisCache may be nil when Redis is
// disabled.
func NewRouter(engine *feed.Engine, database HealthChecker, redisCache *cache.Cache, cfg *config.Config) *Router {
	return &Router{
		engine:   engine,
		database: database,
		cache:    redisCache,
		cfg:      cfg,
		logger:   logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(
		middleware.Tracing(),
		middleware.RequestLogger(logging.WithComponent("http")),
		middleware.Principal(r.cfg.Auth.JWTSecret),
	)

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	api := engine.Group("/api")
	posts := api.Group("/posts")
	get(posts, "/explore", r.explore)
	get(posts, "/tags", r.postsByTag)
	get(posts, "/search",
		middleware.RateLimit(r.cache, "search", r.cfg.RateLimit.Requests, r.cfg.RateLimit.Window),
		r.search,
	)
	get(posts, "/trending", r.trending)

	get(api, "/recipes/favorites", r.favorites)
	get(api, "/users/:username/posts", r.userPosts)
}

// get registers a GET route with and without its trailing slash
func get(group *gin.RouterGroup, path string, handlers ...gin.HandlerFunc) {
	path = strings.TrimSuffix(path, "/")
	group.GET(path, handlers...)
	group.GET(path+"/", handlers...)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if r.database != nil {
		if err := r.database.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
			r.logger.Warn("database health check failed", zap.Error(err))
		} else {
			checks["database"] = "OK"
		}
	}

	switch err := r.cache.Health(ctx); {
	case err == nil:
		checks["redis"] = "OK"
	case errors.Is(err, cache.ErrCacheDisabled):
		checks["redis"] = "disabled"
	default:
		// Redis only backs rate limiting, which fails open.
		checks["redis"] = err.Error()
		r.logger.Warn("redis health check failed", zap.Error(err))
	}

	overall := "OK"
	if status != http.StatusOK {
		overall = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": r.cfg.Telemetry.ServiceName,
		"checks":  checks,
	})
}
