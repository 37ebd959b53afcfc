package http

import (
	"errors"
	"net/http"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError переводит ошибку сервиса в HTTP-статус и прерывает запрос.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, model.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrGameExists), errors.Is(err, model.ErrUserAlreadyExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, model.ErrPromptLocked):
		status, message = http.StatusLocked, err.Error()
	case errors.Is(err, model.ErrInvalidGameName),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrBadRequest),
		errors.Is(err, gamedata.ErrMalformedDocument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, model.ErrTokenExpired):
		status, message = http.StatusUnauthorized, "token has expired"
	case errors.Is(err, model.ErrTokenInvalid), errors.Is(err, model.ErrTokenMalformed), errors.Is(err, model.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "token is missing or invalid"
	case errors.Is(err, model.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	default:
		h.logger.Error("Unhandled internal error", zap.String("path", c.FullPath()), zap.Error(err))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: message})
}
