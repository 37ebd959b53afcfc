package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinZapLogger логирует запросы через zap; уровень зависит от статуса ответа.
func GinZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zapcore.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		// query не логируем: в /ws в нем токен сессии.
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("error", errs))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request handled", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request handled", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
