// Package auth выдает и проверяет токены сессий авторов, хеширует пароли.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sergis-author/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer определяет интерфейс выдачи токена сессии.
type TokenIssuer interface {
	IssueToken(author *model.Author) (string, time.Time, error)
}

// TokenVerifier определяет интерфейс проверки токена сессии.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*model.Claims, error)
}

// JWTManager выдает и проверяет JWT (HS256).
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewJWTManager создает JWTManager. Если логгер nil, используется Noop.
func NewJWTManager(secret string, ttl time.Duration, logger *zap.Logger) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid session ttl %s", ttl)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("JWTManager"),
	}, nil
}

// IssueToken подписывает токен: sub - uuid автора, username - имя автора.
func (m *JWTManager) IssueToken(author *model.Author) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &model.Claims{
		AuthorID: author.ID,
		Username: author.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   author.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken проверяет подпись и срок действия токена и извлекает claims.
func (m *JWTManager) VerifyToken(ctx context.Context, tokenString string) (*model.Claims, error) {
	log := m.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &model.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		log.Debug("Failed to parse or verify token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, model.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, model.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, model.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, model.ErrTokenInvalid
	}

	// sub и author_id должны совпадать.
	if claims.AuthorID == uuid.Nil || claims.Subject != claims.AuthorID.String() {
		log.Warn("Token subject mismatch", zap.String("subject", claims.Subject))
		return nil, fmt.Errorf("%w: author id missing", model.ErrTokenInvalid)
	}
	return claims, nil
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
