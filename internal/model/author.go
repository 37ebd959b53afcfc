package model

import (
	"time"

	"github.com/google/uuid"
)

// Author - учетная запись автора игр.
type Author struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest - тело POST /api/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest - тело POST /api/session.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse возвращается при успешном входе.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Author    Author    `json:"author"`
}

// ErrorResponse - стандартное тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
