package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Документ игры целиком передается одним сообщением.
	maxMessageSize = 8 << 20
	// Максимальное время обработки одного вызова.
	callTimeout = 30 * time.Second
)

// Client - одно RPC-соединение автора.
type Client struct {
	ID       uuid.UUID
	AuthorID uuid.UUID
	Conn     *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// Захваченные соединением промпты: игра -> индексы. Меняется только из readPump.
	locks map[string]map[int]struct{}
}

func newClient(conn *websocket.Conn, authorID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		AuthorID: authorID,
		Conn:     conn,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
		locks:    make(map[string]map[int]struct{}),
	}
}

// close сигнализирует writePump отправить CloseMessage и закрыть соединение.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) holdLocks(game string, indices []int) {
	held, ok := c.locks[game]
	if !ok {
		held = make(map[int]struct{}, len(indices))
		c.locks[game] = held
	}
	for _, i := range indices {
		held[i] = struct{}{}
	}
}

func (c *Client) dropLocks(game string, indices []int) {
	held, ok := c.locks[game]
	if !ok {
		return
	}
	for _, i := range indices {
		delete(held, i)
	}
	if len(held) == 0 {
		delete(c.locks, game)
	}
}

// readPump читает вызовы и обрабатывает их по порядку.
func (c *Client) readPump(h *Handler, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.releaseLocks(c, logger)
		h.manager.UnregisterClient(c)
		c.close()
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		resp := h.handleMessage(ctx, c, message, logger)
		data, err := json.Marshal(resp)
		if err != nil {
			logger.Error("Failed to marshal RPC response", zap.Uint64("requestID", resp.ID), zap.Error(err))
			continue
		}

		select {
		case c.send <- data:
		case <-c.done:
			return
		}
	}
}

// writePump отправляет ответы и пинги. Каждый ответ - отдельное сообщение.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug("Failed to send ping", zap.Error(err))
				c.close()
				return
			}
		case <-c.done:
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
