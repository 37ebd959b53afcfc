package auth

import (
	"errors"
	"fmt"

	"sergis-author/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хеширует и сверяет пароли через bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создает хешер; cost вне допустимого диапазона заменяется на bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хеш пароля.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare возвращает model.ErrInvalidCredentials, если пароль не подходит.
func (h *PasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
	return nil
}
