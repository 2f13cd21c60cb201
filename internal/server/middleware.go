package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	APIKeyHeader    = "x-api-key"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger installs a request-scoped logger carrying request_id into the
// request context and logs each request on completion.
func RequestLogger(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := c.Request.Context()
		logger := clog.FromContext(ctx).With("request_id", requestID)
		c.Request = c.Request.WithContext(clog.WithLogger(ctx, logger))

		for _, p := range skipPaths {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()

		logger = logger.With("method", c.Request.Method).
			With("path", c.Request.URL.Path).
			With("status", c.Writer.Status()).
			With("duration_ms", time.Since(start).Milliseconds())
		for _, err := range c.Errors {
			logger.With("error", err.Error()).Error("Request error")
		}
		logger.Info("Request completed")
	}
}

// APIKeyAuth checks the x-api-key header. With no key configured every request
// is let through.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}
