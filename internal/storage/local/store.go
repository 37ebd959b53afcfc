// Package local хранит игры в локальном key-value хранилище: в памяти, в файле SQLite или в Redis.
package local

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound возвращается Store.Get для отсутствующего ключа.
var ErrKeyNotFound = errors.New("key not found")

// Store - минимальное строковое key-value хранилище.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore держит данные в памяти процесса.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore создает пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
