// Package lock реализует рекомендательные блокировки промптов с TTL.
package lock

import (
	"context"
	"sync"
	"time"
)

// Status - результат попытки захвата.
type Status int

const (
	// Busy - ключ держит другой владелец.
	Busy Status = iota
	// Acquired - ключ был свободен и захвачен этим вызовом.
	Acquired
	// Refreshed - ключ уже принадлежал владельцу, срок продлен.
	Refreshed
)

// Held сообщает, принадлежит ли ключ владельцу после вызова.
func (s Status) Held() bool {
	return s == Acquired || s == Refreshed
}

// Locker - хранилище именованных блокировок с владельцем и сроком жизни.
type Locker interface {
	// Acquire захватывает ключ для owner. Повторный захват тем же владельцем продлевает срок.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (Status, error)
	// Release снимает блокировку, только если ее держит owner.
	Release(ctx context.Context, key, owner string) error
}

type memoryEntry struct {
	owner   string
	expires time.Time
}

// MemoryLocker хранит блокировки в памяти процесса.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryLocker создает пустой MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryEntry), now: time.Now}
}

// Acquire реализует Locker.
func (l *MemoryLocker) Acquire(_ context.Context, key, owner string, ttl time.Duration) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	status := Acquired
	if held, ok := l.locks[key]; ok && now.Before(held.expires) {
		if held.owner != owner {
			return Busy, nil
		}
		status = Refreshed
	}
	l.locks[key] = memoryEntry{owner: owner, expires: now.Add(ttl)}
	return status, nil
}

// Release реализует Locker.
func (l *MemoryLocker) Release(_ context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[key]; ok && held.owner == owner {
		delete(l.locks, key)
	}
	return nil
}
