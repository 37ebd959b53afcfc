package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"sergis-author/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockerContract проверяет поведение, общее для всех реализаций Locker.
func lockerContract(t *testing.T, l Locker) {
	ctx := context.Background()

	status, err := l.Acquire(ctx, "k", "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, status)

	status, err = l.Acquire(ctx, "k", "bob", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Busy, status, "second owner is refused")

	status, err = l.Acquire(ctx, "k", "alice", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Refreshed, status, "owner may refresh its own lock")

	require.NoError(t, l.Release(ctx, "k", "bob"))
	status, err = l.Acquire(ctx, "k", "bob", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Busy, status, "release by a stranger is ignored")

	require.NoError(t, l.Release(ctx, "k", "alice"))
	status, err = l.Acquire(ctx, "k", "bob", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, status)
}

func TestMemoryLocker(t *testing.T) {
	lockerContract(t, NewMemoryLocker())
}

func TestMemoryLockerExpires(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	status, _ := l.Acquire(context.Background(), "k", "alice", time.Second)
	require.Equal(t, Acquired, status)

	now = now.Add(2 * time.Second)
	status, _ = l.Acquire(context.Background(), "k", "bob", time.Second)
	assert.Equal(t, Acquired, status, "expired lock can be taken over")
}

func TestRedisLocker(t *testing.T) {
	client := testutil.StartRedis(t)
	lockerContract(t, NewRedisLocker(client))

	ttl, err := client.PTTL(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestPromptLocksAllOrNothing(t *testing.T) {
	ctx := context.Background()
	locks := NewPromptLocks(NewMemoryLocker(), time.Minute, nil)

	ok, err := locks.Lock(ctx, "author", "game", "conn-1", []int{2})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locks.Lock(ctx, "author", "game", "conn-2", []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)

	// Частичный захват 0 и 1 откатился.
	ok, err = locks.Lock(ctx, "author", "game", "conn-3", []int{1, 0})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locks.Lock(ctx, "other-author", "game", "conn-2", []int{2})
	require.NoError(t, err)
	assert.True(t, ok, "scopes are independent")

	require.NoError(t, locks.Unlock(ctx, "author", "game", "conn-1", []int{2, 2}))
	ok, err = locks.Lock(ctx, "author", "game", "conn-2", []int{2, 3})
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingLocker struct{ *MemoryLocker }

func (f *failingLocker) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (Status, error) {
	if key == PromptKey("a", "g", 1) {
		return Busy, errors.New("redis down")
	}
	return f.MemoryLocker.Acquire(ctx, key, owner, ttl)
}

func TestPromptLocksRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	inner := &failingLocker{MemoryLocker: NewMemoryLocker()}
	locks := NewPromptLocks(inner, time.Minute, nil)

	_, err := locks.Lock(ctx, "a", "g", "c1", []int{0, 1})
	assert.ErrorContains(t, err, "redis down")

	status, err := inner.MemoryLocker.Acquire(ctx, PromptKey("a", "g", 0), "c2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, Acquired, status, "prompt 0 was released after the failure")
}

func TestPromptLocksFailureKeepsEarlierLocks(t *testing.T) {
	ctx := context.Background()
	locks := NewPromptLocks(NewMemoryLocker(), time.Minute, nil)

	ok, err := locks.Lock(ctx, "author", "game", "conn-1", []int{2})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = locks.Lock(ctx, "author", "game", "conn-2", []int{3})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locks.Lock(ctx, "author", "game", "conn-1", []int{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = locks.Lock(ctx, "author", "game", "conn-3", []int{2})
	require.NoError(t, err)
	assert.False(t, ok, "conn-1 still holds prompt 2")

	ok, err = locks.Lock(ctx, "author", "game", "conn-3", []int{1})
	require.NoError(t, err)
	assert.True(t, ok, "prompt 1 taken by the failed call was released")
}

func TestPromptKey(t *testing.T) {
	assert.Equal(t, "sergis:lock:author:Flood:3", PromptKey("author", "Flood", 3))
}
