package abuse

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Limiter caps submissions per source IP within a rolling window. The check
// is an atomic increment-and-compare so concurrent requests never lose counts.
type Limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

// Lua script for atomic increment with TTL on first set.
// KEYS[1] = counter key, ARGV[1] = TTL in seconds.
// Returns the current count.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// RedisLimiter counts submissions in Redis so the cap holds across replicas.
type RedisLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *goredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "rl:contact:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	ttlSeconds := int(l.window.Seconds())

	result, err := l.client.Eval(ctx, rateLimitLuaScript, []string{l.prefix + ip}, ttlSeconds).Result()
	if err != nil {
		return false, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected redis result format")
	}

	return int(count) <= l.limit, nil
}

// memoryEntry tracks request count for one IP (in-memory fallback)
type memoryEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// MemoryLimiter is the single-process fallback used when Redis is not
// configured. Fixed window per IP, serialized by a per-entry mutex.
type MemoryLimiter struct {
	entries sync.Map
	limit   int
	window  time.Duration
}

// NewMemoryLimiter creates the in-memory fallback limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, window: window}
}

func (l *MemoryLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	now := time.Now()

	entryI, _ := l.entries.LoadOrStore(ip, &memoryEntry{resetAt: now.Add(l.window)})
	entry := entryI.(*memoryEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(l.window)
	}

	entry.count++
	return entry.count <= l.limit, nil
}

// NewLimiter picks the Redis limiter when a client is available and falls
// back to the in-memory one otherwise.
func NewLimiter(client *goredis.Client, limit int, window time.Duration) Limiter {
	if client != nil {
		return NewRedisLimiter(client, limit, window)
	}
	return NewMemoryLimiter(limit, window)
}
