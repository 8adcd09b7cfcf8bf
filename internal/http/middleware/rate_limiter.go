package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"openai-image-gateway/internal/ratelimit"
)

// RateLimit rejects requests over the per-client sliding-window limit before
// any upstream work happens. Health checks are exempt.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.URL.Path == "/health" {
			ctx.Next()
			return
		}

		ok, retryAfter := limiter.Allow(ctx.ClientIP())
		if !ok {
			// Round up so a sub-second remainder never advertises an
			// immediate retry.
			seconds := int((retryAfter + time.Second - 1) / time.Second)
			logger.Warn("rate limit exceeded",
				zap.String("client_ip", ctx.ClientIP()),
				zap.String("path", ctx.Request.URL.Path),
				zap.Int("retry_after", seconds),
			)
			ctx.Header("Retry-After", strconv.Itoa(seconds))
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Maximum %d requests per minute allowed", limiter.Limit()),
				"retry_after": seconds,
			})
			return
		}

		ctx.Next()
	}
}
