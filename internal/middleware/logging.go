package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wms/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger scopes a logger with a request id to every request and logs its outcome.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		l := base.With(logger.RequestID(reqID))
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(), l))
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.From(c.Request.Context()).Error("request", fields...)
		case status >= 400:
			logger.From(c.Request.Context()).Warn("request", fields...)
		default:
			logger.From(c.Request.Context()).Info("request", fields...)
		}
	}
}
