package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader is the HTTP header for request ID
const RequestIDHeader = "X-Request-ID"

// GinMiddleware adds a request ID to the request context and logs
// request start/completion
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = GenerateRequestID()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		Info(ctx).
			Str("method", method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}
