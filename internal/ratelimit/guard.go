// Package ratelimit throttles password-reset requests per client identity.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Guard admits or rejects one action for a client identity. Implementations
// must be safe for concurrent use.
type Guard interface {
	// Admit counts one request for identity and returns
	// domain.ErrThrottled once the window's threshold is exceeded.
	Admit(ctx context.Context, identity string) error
}

const redisKeyPrefix = "reset:rl:"

// RedisGuard is a fixed-window counter shared across replicas. The first
// increment of a window sets the key's expiry; the counter disappears with
// the window.
type RedisGuard struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisGuard(client *redis.Client, max int, window time.Duration) *RedisGuard {
	return &RedisGuard{client: client, max: max, window: window}
}

func (g *RedisGuard) Admit(ctx context.Context, identity string) error {
	key := redisKeyPrefix + identity

	count, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, key, g.window).Err(); err != nil {
			return fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if count > int64(g.max) {
		return domain.ErrThrottled
	}
	return nil
}

// MemoryGuard is an in-process fixed window for ENV=local and tests.
// Not suitable behind multiple replicas.
type MemoryGuard struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	max     int
	window  time.Duration
	now     func() time.Time
}

type memoryWindow struct {
	start time.Time
	count int
}

func NewMemoryGuard(max int, window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		windows: make(map[string]*memoryWindow),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

func (g *MemoryGuard) Admit(_ context.Context, identity string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	w, ok := g.windows[identity]
	if !ok || now.Sub(w.start) >= g.window {
		w = &memoryWindow{start: now}
		g.windows[identity] = w
	}

	w.count++
	if w.count > g.max {
		return domain.ErrThrottled
	}
	return nil
}
