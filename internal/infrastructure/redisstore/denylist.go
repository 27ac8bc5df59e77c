package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "reset:consumed:"

// Denylist stores consumed token IDs in Redis, shared across replicas.
// Keys expire with the token TTL, so the set stays bounded on its own.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

func (d *Denylist) Consume(ctx context.Context, jti string, ttl time.Duration) error {
	if err := d.client.Set(ctx, denylistKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("denylist consume: %w", err)
	}
	return nil
}

func (d *Denylist) IsConsumed(ctx context.Context, jti string) (bool, error) {
	err := d.client.Get(ctx, denylistKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return true, nil
}
