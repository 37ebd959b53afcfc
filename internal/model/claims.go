package model

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - содержимое токена сессии автора.
type Claims struct {
	AuthorID uuid.UUID `json:"author_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}
