package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"openai-image-gateway/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoggerTagsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.GET("/ping", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	rec := serve(router, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, rec.Header().Get(RequestIDHeader), fields["request_id"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
}

func TestSecurityHeadersApplied(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	rec := serve(router, http.MethodGet, "/")

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRetryAfterNeverZero(t *testing.T) {
	// A sub-second window leaves a sub-second remainder, which must round
	// up rather than advertise an immediate retry.
	limiter := ratelimit.New(1, 500*time.Millisecond)

	router := gin.New()
	router.Use(RateLimit(limiter, zap.NewNop()))
	router.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/").Code)

	rec := serve(router, http.MethodGet, "/")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
