package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectionManager хранит активные RPC-соединения.
type ConnectionManager struct {
	clients map[uuid.UUID]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewConnectionManager создает ConnectionManager.
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[uuid.UUID]*Client),
		logger:  logger.Named("ConnectionManager"),
	}
}

// RegisterClient добавляет соединение.
func (m *ConnectionManager) RegisterClient(client *Client) {
	m.mu.Lock()
	m.clients[client.ID] = client
	m.mu.Unlock()
	activeConnections.Inc()
	m.logger.Info("Client connected", zap.String("clientID", client.ID.String()), zap.String("authorID", client.AuthorID.String()))
}

// UnregisterClient удаляет соединение. Повторный вызов ничего не делает.
func (m *ConnectionManager) UnregisterClient(client *Client) {
	m.mu.Lock()
	_, ok := m.clients[client.ID]
	delete(m.clients, client.ID)
	m.mu.Unlock()
	if ok {
		activeConnections.Dec()
		m.logger.Info("Client disconnected", zap.String("clientID", client.ID.String()))
	}
}

// Count возвращает число активных соединений.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll закрывает все соединения; pumps завершаются сами.
func (m *ConnectionManager) CloseAll() {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
	m.logger.Info("All connections closed", zap.Int("count", len(clients)))
}

// WaitIdle ждет, пока все соединения завершатся и снимут блокировки, или отмены ctx.
func (m *ConnectionManager) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for m.Count() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
