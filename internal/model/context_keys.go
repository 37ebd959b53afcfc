package model

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// AuthorContextKey хранит uuid.UUID автора в контексте запроса.
	AuthorContextKey contextKey = "authorID"
	// UsernameContextKey хранит имя автора.
	UsernameContextKey contextKey = "username"
)

// WithClaims кладет данные автора из токена в контекст.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, AuthorContextKey, claims.AuthorID)
	return context.WithValue(ctx, UsernameContextKey, claims.Username)
}

// GetAuthorIDFromContext извлекает ID автора из контекста.
func GetAuthorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AuthorContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetUsernameFromContext извлекает имя автора из контекста.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UsernameContextKey).(string)
	return name, ok
}
