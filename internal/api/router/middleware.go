package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"contentbe/internal/apperr"
)

// pq error code for unique constraint violations.
const pqUniqueViolation = "23505"

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Log request details
		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ErrorMiddleware maps errors recorded on the gin context to the uniform
// {"detail": ...} error envelope. Known application errors keep their status
// codes; duplicate-key storage violations surface as 400 with a fixed
// message; everything else becomes an opaque 500.
func ErrorMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, detail := mapError(err, c)

		if status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
		}

		c.JSON(status, gin.H{"detail": detail})
	}
}

func mapError(err error, c *gin.Context) (int, string) {
	var loginErr *apperr.InvalidLoginCodeError
	if errors.As(err, &loginErr) {
		c.Header("X-Session", loginErr.Session)
		return http.StatusUnauthorized, "Login code was invalid"
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Detail
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return http.StatusBadRequest, "duplicate value already in the database"
	}

	return http.StatusInternalServerError, "internal server error"
}

// RateLimitMiddleware applies a fixed-window per-client request limit backed
// by Redis. Redis trouble fails open: limiting is best-effort, not a
// correctness guarantee.
func RateLimitMiddleware(logger *slog.Logger, rl RateLimit) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/int64(rl.Window.Seconds()))

		count, err := rl.Redis.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("Rate limit check failed",
				slog.Any("error", err),
			)
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.Redis.Expire(ctx, key, rl.Window).Err(); err != nil {
				logger.Warn("Rate limit key expiry failed",
					slog.String("key", key),
					slog.Any("error", err),
				)
			}
		}

		if count > int64(rl.Requests) {
			_ = c.Error(apperr.TooManyRequests("rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}
