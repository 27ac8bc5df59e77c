package token

import (
	"context"
	"sync"
	"time"
)

// Denylist tracks consumed token IDs so a token cannot be replayed inside
// its TTL. Entries only need to outlive the token they block.
type Denylist interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) error
	IsConsumed(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist is an in-process Denylist for ENV=local and tests.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *MemoryDenylist) Consume(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = d.now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsConsumed(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiry, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if d.now().After(expiry) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}
