// Package cache provides a Redis-backed idempotency guard. The payment
// provider may redeliver a confirmation webhook; the guard makes sure a
// given payment reference is applied at most once within its TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard tracks already-processed keys.
type Guard interface {
	// Once reports whether key is seen for the first time. A false result
	// means the key was already processed and the caller should skip.
	Once(ctx context.Context, key string) (bool, error)
}

type redisGuard struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

// NewRedisGuard connects to Redis at addr. Keys are namespaced by
// serviceName and expire after ttl.
func NewRedisGuard(addr, serviceName string, ttl time.Duration) Guard {
	return &redisGuard{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
		ttl:         ttl,
	}
}

func (g *redisGuard) Once(ctx context.Context, key string) (bool, error) {
	first, err := g.client.SetNX(ctx, g.generateKey("payment", key), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: mark %q processed: %w", key, err)
	}
	return first, nil
}

func (g *redisGuard) generateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", g.serviceName, operation, key)
}
