// Package websocket - RPC хранилища игр поверх websocket.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sergis-author/internal/auth"
	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
	"sergis-author/internal/rpc"
	"sergis-author/internal/service"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Доступ проверяется токеном, а не Origin.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type methodFunc func(ctx context.Context, c *Client, args []json.RawMessage) (any, error)

// Handler принимает websocket-соединения и выполняет вызовы хранилища.
type Handler struct {
	games    service.GameService
	verifier auth.TokenVerifier
	manager  *ConnectionManager
	baseURL  string
	methods  map[string]methodFunc
	logger   *zap.Logger
}

// NewHandler создает Handler. baseURL используется в ссылках на предпросмотр и публикацию.
func NewHandler(games service.GameService, verifier auth.TokenVerifier, manager *ConnectionManager, baseURL string, logger *zap.Logger) *Handler {
	h := &Handler{
		games:    games,
		verifier: verifier,
		manager:  manager,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger.Named("RPCHandler"),
	}
	h.methods = map[string]methodFunc{
		rpc.MethodGetGameList:   h.getGameList,
		rpc.MethodLoadGame:      h.loadGame,
		rpc.MethodSaveGame:      h.saveGame,
		rpc.MethodRenameGame:    h.renameGame,
		rpc.MethodRemoveGame:    h.removeGame,
		rpc.MethodCheckGameName: h.checkGameName,
		rpc.MethodPreviewGame:   h.previewGame,
		rpc.MethodPublishGame:   h.publishGame,
		rpc.MethodLockPrompts:   h.lockPrompts,
		rpc.MethodUnlockPrompts: h.unlockPrompts,
	}
	return h
}

// ServeWS проверяет токен из query-параметра token и поднимает соединение.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.Warn("Missing 'token' query parameter")
		http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.verifier.VerifyToken(r.Context(), tokenString)
	if err != nil {
		h.logger.Warn("Invalid token on upgrade", zap.Error(err))
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Error("Failed to upgrade connection", zap.String("authorID", claims.AuthorID.String()), zap.Error(err))
		return
	}

	client := newClient(conn, claims.AuthorID)
	h.manager.RegisterClient(client)

	logger := h.logger.With(zap.String("clientID", client.ID.String()), zap.String("authorID", client.AuthorID.String()))
	go client.writePump(logger)
	go client.readPump(h, logger)
}

func (h *Handler) handleMessage(ctx context.Context, c *Client, message []byte, logger *zap.Logger) rpc.Response {
	var req rpc.Request
	if err := json.Unmarshal(message, &req); err != nil {
		logger.Warn("Malformed RPC request", zap.Error(err))
		rpcCallsTotal.WithLabelValues("", rpc.CodeInvalidInput).Inc()
		return rpc.Reject(0, rpc.CodeInvalidInput, "malformed request")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	result, err := h.call(ctx, c, req)
	rpcCallDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		code := rpc.CodeFor(err)
		rpcCallsTotal.WithLabelValues(req.Method, code).Inc()
		message := err.Error()
		if code == rpc.CodeInternal {
			logger.Error("RPC call failed", zap.String("method", req.Method), zap.Uint64("requestID", req.ID), zap.Error(err))
			message = "internal server error"
		} else {
			logger.Debug("RPC call rejected", zap.String("method", req.Method), zap.String("code", code), zap.Error(err))
		}
		return rpc.Reject(req.ID, code, message)
	}

	resp, err := rpc.Resolve(req.ID, result)
	if err != nil {
		logger.Error("Failed to encode RPC result", zap.String("method", req.Method), zap.Error(err))
		rpcCallsTotal.WithLabelValues(req.Method, rpc.CodeInternal).Inc()
		return rpc.Reject(req.ID, rpc.CodeInternal, "internal server error")
	}
	rpcCallsTotal.WithLabelValues(req.Method, "ok").Inc()
	return resp
}

func (h *Handler) call(ctx context.Context, c *Client, req rpc.Request) (any, error) {
	method, ok := h.methods[req.Method]
	if !ok {
		return nil, rpc.ErrUnknownMethod
	}
	claims, err := h.verifier.VerifyToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if claims.AuthorID != c.AuthorID {
		return nil, model.ErrForbidden
	}
	return method(ctx, c, req.Args)
}

// releaseLocks снимает блокировки, оставшиеся за закрытым соединением.
func (h *Handler) releaseLocks(c *Client, logger *zap.Logger) {
	if len(c.locks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	for game, held := range c.locks {
		indices := make([]int, 0, len(held))
		for i := range held {
			indices = append(indices, i)
		}
		if err := h.games.UnlockPrompts(ctx, c.AuthorID, c.ID.String(), game, indices); err != nil {
			logger.Error("Failed to release prompt locks", zap.String("game", game), zap.Error(err))
			continue
		}
		logger.Debug("Prompt locks released on disconnect", zap.String("game", game), zap.Ints("indices", indices))
	}
	c.locks = make(map[string]map[int]struct{})
}

func (h *Handler) getGameList(ctx context.Context, c *Client, _ []json.RawMessage) (any, error) {
	list, err := h.games.ListGames(ctx, c.AuthorID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]gamedata.Timestamp, len(list))
	for name, modified := range list {
		out[name] = gamedata.NewTimestamp(modified)
	}
	return out, nil
}

func (h *Handler) loadGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var name string
	if err := rpc.DecodeArgs(args, &name); err != nil {
		return nil, err
	}
	return h.games.LoadGame(ctx, c.AuthorID, name)
}

func (h *Handler) saveGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var (
		name string
		game gamedata.Game
	)
	if err := rpc.DecodeArgs(args, &name, &game); err != nil {
		return nil, err
	}
	modified, err := h.games.SaveGame(ctx, c.AuthorID, name, &game)
	if err != nil {
		return nil, err
	}
	return gamedata.NewTimestamp(modified), nil
}

func (h *Handler) renameGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var oldName, newName string
	if err := rpc.DecodeArgs(args, &oldName, &newName); err != nil {
		return nil, err
	}
	return nil, h.games.RenameGame(ctx, c.AuthorID, oldName, newName)
}

func (h *Handler) removeGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var name string
	if err := rpc.DecodeArgs(args, &name); err != nil {
		return nil, err
	}
	return nil, h.games.RemoveGame(ctx, c.AuthorID, name)
}

func (h *Handler) checkGameName(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var name string
	if err := rpc.DecodeArgs(args, &name); err != nil {
		return nil, err
	}
	return nil, h.games.CheckGameName(ctx, c.AuthorID, name)
}

func (h *Handler) previewGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var game gamedata.Game
	if err := rpc.DecodeArgs(args, &game); err != nil {
		return nil, err
	}
	id, err := h.games.PreviewGame(ctx, c.AuthorID, &game)
	if err != nil {
		return nil, err
	}
	return rpc.PublishResult{ID: id, URL: h.baseURL + "/preview/" + id}, nil
}

func (h *Handler) publishGame(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var (
		name   string
		access model.Access
	)
	if err := rpc.DecodeArgs(args, &name, &access); err != nil {
		return nil, err
	}
	id, err := h.games.PublishGame(ctx, c.AuthorID, name, access)
	if err != nil {
		return nil, err
	}
	return rpc.PublishResult{ID: id.String(), URL: h.baseURL + "/published/" + id.String()}, nil
}

func (h *Handler) lockPrompts(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var (
		game    string
		indices []int
	)
	if err := rpc.DecodeArgs(args, &game, &indices); err != nil {
		return nil, err
	}
	ok, err := h.games.LockPrompts(ctx, c.AuthorID, c.ID.String(), game, indices)
	if err != nil {
		return nil, err
	}
	if ok {
		c.holdLocks(game, indices)
	}
	return ok, nil
}

func (h *Handler) unlockPrompts(ctx context.Context, c *Client, args []json.RawMessage) (any, error) {
	var (
		game    string
		indices []int
	)
	if err := rpc.DecodeArgs(args, &game, &indices); err != nil {
		return nil, err
	}
	if err := h.games.UnlockPrompts(ctx, c.AuthorID, c.ID.String(), game, indices); err != nil {
		return nil, err
	}
	c.dropLocks(game, indices)
	return nil, nil
}
