package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/pkg/logger"
)

// Logger returns a gin middleware for logging. Server errors are also
// written to the error category when the adapter has one.
func Logger(logAdapter *logger.LoggerAdapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		logAdapter.General().Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("client_ip", clientIP),
		)

		if statusCode >= 500 {
			if ml := logAdapter.GetMultiLogger(); ml != nil {
				ml.LogAppError("HTTP error response",
					zap.String("method", method),
					zap.String("path", path),
					zap.Int("status", statusCode),
					zap.String("client_ip", clientIP),
				)
			}
		}
	}
}
