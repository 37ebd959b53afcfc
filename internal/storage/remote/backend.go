// Package remote - хранилище игр на сервере авторинга, доступное по websocket RPC.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
	"sergis-author/internal/rpc"
	"sergis-author/internal/storage"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Config - параметры подключения к серверу.
type Config struct {
	// ServerURL - адрес HTTP-сервера, например http://localhost:8080.
	ServerURL string
	Username  string
	Password  string
	// Token - готовый токен сессии; если задан, вход по паролю не выполняется.
	Token       string
	DialTimeout time.Duration
}

// Backend реализует storage.Backend вызовами на сервер.
type Backend struct {
	cfg        Config
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	token   string
	nextID  uint64
	pending map[uint64]chan rpc.Response
	closed  chan struct{}
	err     error

	writeMu sync.Mutex
}

var (
	_ storage.Backend      = (*Backend)(nil)
	_ storage.Previewer    = (*Backend)(nil)
	_ storage.Publisher    = (*Backend)(nil)
	_ storage.PromptLocker = (*Backend)(nil)
)

// New создает Backend. Соединение устанавливается в Init.
func New(cfg Config, logger *zap.Logger) *Backend {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.DialTimeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout},
		logger:     logger.Named("RemoteBackend"),
		pending:    make(map[uint64]chan rpc.Response),
	}
}

// Init получает токен (если он не задан) и открывает websocket.
func (b *Backend) Init(ctx context.Context) error {
	b.mu.Lock()
	if b.conn != nil && b.err == nil {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	token := b.cfg.Token
	if token == "" {
		var err error
		if token, err = b.login(ctx); err != nil {
			return err
		}
	}

	wsURL, err := websocketURL(b.cfg.ServerURL, token)
	if err != nil {
		return err
	}
	conn, resp, err := b.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("failed to open storage connection: %w", model.ErrUnauthorized)
		}
		return fmt.Errorf("failed to open storage connection: %w", err)
	}

	closed := make(chan struct{})
	b.mu.Lock()
	b.conn = conn
	b.token = token
	b.closed = closed
	b.err = nil
	b.mu.Unlock()

	go b.readLoop(conn, closed)
	b.logger.Info("Connected to authoring server", zap.String("url", b.cfg.ServerURL))
	return nil
}

// readLoop раздает ответы ожидающим вызовам.
func (b *Backend) readLoop(conn *websocket.Conn, closed chan struct{}) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			b.fail(conn, closed, err)
			return
		}
		var resp rpc.Response
		if err := json.Unmarshal(message, &resp); err != nil {
			b.logger.Warn("Malformed response from server", zap.Error(err))
			continue
		}

		b.mu.Lock()
		ch, ok := b.pending[resp.ID]
		delete(b.pending, resp.ID)
		b.mu.Unlock()
		if !ok {
			b.logger.Debug("Response for unknown or abandoned call", zap.Uint64("requestID", resp.ID))
			continue
		}
		ch <- resp
	}
}

func (b *Backend) fail(conn *websocket.Conn, closed chan struct{}, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != conn {
		return
	}
	if b.err == nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, ErrClosed) {
			b.logger.Warn("Storage connection lost", zap.Error(err))
		}
		b.err = ErrClosed
		close(closed)
	}
	b.pending = make(map[uint64]chan rpc.Response)
	_ = conn.Close()
}

// call выполняет метод и раскладывает результат в result (если не nil).
func (b *Backend) call(ctx context.Context, method string, result any, args ...any) error {
	encoded, err := rpc.EncodeArgs(args...)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.conn == nil || b.err != nil {
		b.mu.Unlock()
		return ErrClosed
	}
	b.nextID++
	id := b.nextID
	ch := make(chan rpc.Response, 1)
	b.pending[id] = ch
	conn, token, closed := b.conn, b.token, b.closed
	b.mu.Unlock()

	data, err := json.Marshal(rpc.Request{ID: id, Method: method, Token: token, Args: encoded})
	if err != nil {
		b.forget(id)
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	b.writeMu.Lock()
	_ = conn.SetWriteDeadline(deadline)
	err = conn.WriteMessage(websocket.TextMessage, data)
	b.writeMu.Unlock()
	if err != nil {
		b.forget(id)
		b.fail(conn, closed, err)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}

	var resp rpc.Response
	select {
	case resp = <-ch:
	case <-ctx.Done():
		b.forget(id)
		return ctx.Err()
	case <-closed:
		return ErrClosed
	}

	if !resp.Resolved {
		var errData rpc.ErrorData
		if err := json.Unmarshal(resp.Data, &errData); err != nil {
			errData = rpc.ErrorData{Code: rpc.CodeInternal, Message: string(resp.Data)}
		}
		return &RemoteError{Method: method, Code: errData.Code, Message: errData.Message}
	}
	if result != nil {
		if err := json.Unmarshal(resp.Data, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

func (b *Backend) forget(id uint64) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}

func (b *Backend) GetGameList(ctx context.Context) (storage.GameList, error) {
	var raw map[string]gamedata.Timestamp
	if err := b.call(ctx, rpc.MethodGetGameList, &raw); err != nil {
		return nil, err
	}
	list := make(storage.GameList, len(raw))
	for name, modified := range raw {
		list[name] = modified.Time
	}
	return list, nil
}

func (b *Backend) LoadGame(ctx context.Context, name string) (*gamedata.Game, error) {
	game := &gamedata.Game{}
	if err := b.call(ctx, rpc.MethodLoadGame, game, name); err != nil {
		return nil, err
	}
	gamedata.Check(game)
	return game, nil
}

// SaveGame сохраняет документ и переносит в него время изменения, выставленное сервером.
// На сервер уходит копия после Check.
func (b *Backend) SaveGame(ctx context.Context, name string, game *gamedata.Game) error {
	if !storage.ValidGameName(name) {
		return fmt.Errorf("error saving game %q: %w", name, model.ErrInvalidGameName)
	}
	doc := game.Clone()
	gamedata.Check(doc)
	var modified gamedata.Timestamp
	if err := b.call(ctx, rpc.MethodSaveGame, &modified, name, doc); err != nil {
		return err
	}
	game.Modified = modified
	return nil
}

func (b *Backend) RenameGame(ctx context.Context, oldName, newName string) error {
	return b.call(ctx, rpc.MethodRenameGame, nil, oldName, newName)
}

func (b *Backend) RemoveGame(ctx context.Context, name string) error {
	return b.call(ctx, rpc.MethodRemoveGame, nil, name)
}

func (b *Backend) CheckGameName(ctx context.Context, name string) error {
	if !storage.ValidGameName(name) {
		return fmt.Errorf("game name %q: %w", name, model.ErrInvalidGameName)
	}
	return b.call(ctx, rpc.MethodCheckGameName, nil, name)
}

// PreviewGame возвращает адрес предпросмотра.
func (b *Backend) PreviewGame(ctx context.Context, game *gamedata.Game) (string, error) {
	var result rpc.PublishResult
	if err := b.call(ctx, rpc.MethodPreviewGame, &result, game); err != nil {
		return "", err
	}
	return result.URL, nil
}

// PublishGame возвращает адрес опубликованной игры.
func (b *Backend) PublishGame(ctx context.Context, name string, access model.Access) (string, error) {
	var result rpc.PublishResult
	if err := b.call(ctx, rpc.MethodPublishGame, &result, name, access); err != nil {
		return "", err
	}
	return result.URL, nil
}

func (b *Backend) LockPrompts(ctx context.Context, game string, indices []int) (bool, error) {
	var ok bool
	if err := b.call(ctx, rpc.MethodLockPrompts, &ok, game, indices); err != nil {
		return false, err
	}
	return ok, nil
}

func (b *Backend) UnlockPrompts(ctx context.Context, game string, indices []int) error {
	return b.call(ctx, rpc.MethodUnlockPrompts, nil, game, indices)
}

// Close закрывает соединение; сервер снимает блокировки этого соединения.
func (b *Backend) Close() error {
	b.mu.Lock()
	conn, closed := b.conn, b.closed
	alive := conn != nil && b.err == nil
	b.mu.Unlock()
	if !alive {
		return nil
	}

	b.writeMu.Lock()
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	b.writeMu.Unlock()

	b.fail(conn, closed, ErrClosed)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("failed to close storage connection: %w", err)
	}
	return nil
}
