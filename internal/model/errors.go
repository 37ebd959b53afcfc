package model

import "errors"

// Общие ошибки приложения. Сервисы оборачивают их через fmt.Errorf("...: %w"),
// транспортный слой сопоставляет их с кодами ответа через errors.Is.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrGameExists      = errors.New("game with this name already exists")
	ErrInvalidGameName = errors.New("invalid game name")
	ErrPromptLocked    = errors.New("prompt is locked by another session")

	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
	ErrInternalServer = errors.New("internal server error")
)
