package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentbe/internal/apperr"
	"contentbe/shared/logger"
)

func errorTestRouter(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewDefault().Logger))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(fail)
	})
	return r
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestErrorMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "application error keeps its status",
			err:        apperr.NotFound("object not found"),
			wantStatus: http.StatusNotFound,
			wantDetail: "object not found",
		},
		{
			name:       "wrapped application error still maps",
			err:        fmt.Errorf("saving article: %w", apperr.BadRequest("size must be between 1 and 100")),
			wantStatus: http.StatusBadRequest,
			wantDetail: "size must be between 1 and 100",
		},
		{
			name:       "unique violation maps to a fixed 400",
			err:        &pq.Error{Code: pqUniqueViolation, Message: "duplicate key value violates unique constraint"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "duplicate value already in the database",
		},
		{
			name:       "other pq errors stay opaque",
			err:        &pq.Error{Code: "23503", Message: "foreign key violation"},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
		{
			name:       "unknown error is an opaque 500",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := errorTestRouter(tt.err)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func TestErrorMiddleware_InvalidLoginCode(t *testing.T) {
	r := errorTestRouter(&apperr.InvalidLoginCodeError{Session: "sess-1234"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Login code was invalid", decodeDetail(t, w))
	assert.Equal(t, "sess-1234", w.Header().Get("X-Session"))
}

func TestErrorMiddleware_SkipsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewDefault().Logger))
	r.GET("/partial", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"state": "queued"})
		_ = c.Error(fmt.Errorf("late failure"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/partial", nil))

	// The handler's own response must not be clobbered.
	assert.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "queued", body["state"])
}

func TestErrorMiddleware_NoErrorsIsUntouched(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorMiddleware(logger.NewDefault().Logger))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// fakeLimiterStore counts increments in memory so limiter behavior can be
// exercised without a live redis.
type fakeLimiterStore struct {
	count     int64
	incrErr   error
	expireErr error
	expires   int
}

func (f *fakeLimiterStore) Incr(_ context.Context, _ string) *redis.IntCmd {
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.count++
	return redis.NewIntResult(f.count, nil)
}

func (f *fakeLimiterStore) Expire(_ context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	f.expires++
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	return redis.NewBoolResult(true, nil)
}

func rateLimitTestRouter(log *slog.Logger, store *fakeLimiterStore, requests int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorMiddleware(log))
	r.Use(RateLimitMiddleware(log, RateLimit{
		Enabled:  true,
		Requests: requests,
		Window:   time.Minute,
		Redis:    store,
	}))
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	store := &fakeLimiterStore{}
	r := rateLimitTestRouter(logger.NewDefault().Logger, store, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Third request in the window trips the limit.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limit exceeded", decodeDetail(t, w))

	// Only the first request of the window sets the key expiry.
	assert.Equal(t, 1, store.expires)
}

func TestRateLimitMiddleware_FailsOpenOnIncrError(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&out, nil))

	store := &fakeLimiterStore{incrErr: fmt.Errorf("connection refused")}
	r := rateLimitTestRouter(log, store, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out.String(), "Rate limit check failed")
}

func TestRateLimitMiddleware_WarnsOnExpireError(t *testing.T) {
	var out bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&out, nil))

	store := &fakeLimiterStore{expireErr: fmt.Errorf("connection refused")}
	r := rateLimitTestRouter(log, store, 5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))

	// A failed expiry must not reject the request, but it must be visible.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out.String(), "Rate limit key expiry failed")
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/ok", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
