// Package http - HTTP API сервера авторинга: сессии, websocket RPC, предпросмотр и публикации.
package http

import (
	"net/http"

	"sergis-author/internal/auth"
	"sergis-author/internal/delivery/http/middleware"
	"sergis-author/internal/model"
	"sergis-author/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler обслуживает HTTP-маршруты.
type Handler struct {
	sessions service.SessionService
	games    service.GameService
	verifier auth.TokenVerifier
	rpc      http.HandlerFunc
	logger   *zap.Logger
}

// NewHandler создает Handler. rpc - обработчик websocket-соединений /ws.
func NewHandler(sessions service.SessionService, games service.GameService, verifier auth.TokenVerifier, rpc http.HandlerFunc, logger *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		games:    games,
		verifier: verifier,
		rpc:      rpc,
		logger:   logger.Named("HTTPHandler"),
	}
}

// RegisterRoutes регистрирует маршруты.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.health)

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/session", h.login)
		api.GET("/session", middleware.RequireAuth(h.verifier, h.handleServiceError, h.logger), h.currentSession)
	}

	if h.rpc != nil {
		router.GET("/ws", gin.WrapF(h.rpc))
	}
	router.GET("/preview/:id", h.getPreview)
	router.GET("/published/:id", middleware.OptionalAuth(h.verifier, h.handleServiceError, h.logger), h.getPublished)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid register request", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	author, err := h.sessions.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *Handler) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// currentSession возвращает автора, которому принадлежит токен.
func (h *Handler) currentSession(c *gin.Context) {
	authorID, _ := model.GetAuthorIDFromContext(c.Request.Context())
	username, _ := model.GetUsernameFromContext(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"author_id": authorID, "username": username})
}

// getPreview отдает экспортированный документ как есть.
func (h *Handler) getPreview(c *gin.Context) {
	document, err := h.games.GetPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", document)
}

func (h *Handler) getPublished(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleServiceError(c, model.ErrNotFound)
		return
	}
	// Анонимный зритель получает uuid.Nil и видит только публичные игры.
	viewer, _ := model.GetAuthorIDFromContext(c.Request.Context())

	game, err := h.games.GetPublished(c.Request.Context(), id, viewer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, game)
}
