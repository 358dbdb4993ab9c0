package middleware

import (
	"fmt"
	"time"

	"mingle-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		log.InfoCtx(c.Request.Context(), fmt.Sprintf("%s %s %d %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			latency,
		))
	}
}
