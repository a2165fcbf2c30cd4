package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"contentbe/internal/api/handler"
)

// LimiterStore is the subset of redis commands the rate limiter uses,
// satisfied by *redis.Client.
type LimiterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit configures the optional per-client request limiter.
type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Redis    LimiterStore
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, rateLimit RateLimit) *gin.Engine {
	r := gin.New()

	// Middleware. Unhandled panics surface as the same opaque 500 envelope
	// as unmapped errors. The logger wraps the error mapper so the logged
	// status is the status the client received.
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}))
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(ErrorMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	if rateLimit.Enabled && rateLimit.Redis != nil {
		r.Use(RateLimitMiddleware(deps.Logger, rateLimit))
	}

	h := handler.New(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/healthcheck", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		profiles := v1.Group("/profiles")
		{
			profiles.GET("", h.Transactional(h.ListProfiles))
			profiles.POST("", h.Transactional(h.CreateProfile))
		}

		articles := v1.Group("/articles")
		{
			articles.GET("", h.Transactional(h.ListArticles))
			articles.POST("", h.Transactional(h.CreateArticle))
		}
	}

	return r
}
