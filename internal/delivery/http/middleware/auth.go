// Package middleware - gin middleware сервера авторинга.
package middleware

import (
	"strings"

	"sergis-author/internal/auth"
	"sergis-author/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler отвечает клиенту по ошибке и прерывает цепочку.
type ErrorHandler func(c *gin.Context, err error)

// bearerToken извлекает токен из заголовка Authorization. ok=false - заголовок есть, но формат неверный.
func bearerToken(c *gin.Context) (token string, present bool, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, true
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", true, false
	}
	return parts[1], true, true
}

// RequireAuth пропускает только запросы с действительным токеном сессии.
func RequireAuth(verifier auth.TokenVerifier, onError ErrorHandler, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(verifier, onError, logger, true)
}

// OptionalAuth проверяет токен, если он передан; запрос без токена проходит анонимно.
func OptionalAuth(verifier auth.TokenVerifier, onError ErrorHandler, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(verifier, onError, logger, false)
}

func authenticate(verifier auth.TokenVerifier, onError ErrorHandler, logger *zap.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, ok := bearerToken(c)
		if !ok {
			logger.Warn("Invalid Authorization header format")
			onError(c, model.ErrTokenMalformed)
			return
		}
		if !present {
			if required {
				onError(c, model.ErrUnauthorized)
				return
			}
			c.Next()
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			onError(c, err)
			return
		}
		c.Request = c.Request.WithContext(model.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}
