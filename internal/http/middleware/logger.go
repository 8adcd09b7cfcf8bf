package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger emits one structured line per request, correlated with the ID set
// by RequestID so a generation can be traced from admission to response.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		requestID, _ := params.Keys["request_id"].(string)
		logger.Info("request completed",
			zap.String("request_id", requestID),
			zap.String("method", params.Method),
			zap.String("path", params.Path),
			zap.Int("status", params.StatusCode),
			zap.Duration("latency", params.Latency),
			zap.String("client_ip", params.ClientIP),
		)
		return ""
	})
}
