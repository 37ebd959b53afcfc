package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// acquireScript продлевает блокировку своего владельца (2) или ставит новую через SET NX PX (1).
var acquireScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == ARGV[1] then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	return 2
end
if current then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2])
return 1
`)

// releaseScript удаляет ключ, только если значение совпадает с владельцем.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker хранит блокировки в Redis, общие для всех экземпляров сервера.
type RedisLocker struct {
	client redis.Scripter
}

// NewRedisLocker создает RedisLocker поверх клиента go-redis.
func NewRedisLocker(client redis.Scripter) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire реализует Locker.
func (l *RedisLocker) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (Status, error) {
	res, err := acquireScript.Run(ctx, l.client, []string{key}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return Busy, fmt.Errorf("redis acquire %s: %w", key, err)
	}
	switch res {
	case 1:
		return Acquired, nil
	case 2:
		return Refreshed, nil
	}
	return Busy, nil
}

// Release реализует Locker.
func (l *RedisLocker) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
