package guard

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	autherror "github.com/realtycore/auth-service/internal/errors"
)

const redisKeyPrefix = "guard:"

// RedisGuard keeps fixed-window counters in Redis so the throttle survives
// restarts and is shared across replicas. A Redis outage fails open: the
// guard is a throttle, not a security boundary, and must never take login
// down with it.
type RedisGuard struct {
	client redis.UniversalClient
	limits Limits
	log    *zap.Logger
}

func NewRedisGuard(client redis.UniversalClient, limits Limits, log *zap.Logger) *RedisGuard {
	return &RedisGuard{client: client, limits: limits, log: log}
}

func (g *RedisGuard) Check(ctx context.Context, kind Kind, addr string) error {
	k := redisKeyPrefix + key(kind, addr)

	count, err := g.client.Get(ctx, k).Int64()
	if err != nil {
		if err != redis.Nil {
			g.log.Warn("attempt guard check failed, allowing request",
				zap.String("key", k), zap.Error(err))
		}
		return nil
	}

	if count >= int64(g.limits.capFor(kind)) {
		retryAfter, err := g.client.TTL(ctx, k).Result()
		if err != nil || retryAfter < 0 {
			retryAfter = g.limits.Window
		}
		return &autherror.ThrottledError{RetryAfter: retryAfter}
	}
	return nil
}

func (g *RedisGuard) Record(ctx context.Context, kind Kind, addr string) {
	k := redisKeyPrefix + key(kind, addr)

	count, err := g.client.Incr(ctx, k).Result()
	if err != nil {
		g.log.Warn("attempt guard record failed", zap.String("key", k), zap.Error(err))
		return
	}

	// Fixed-window semantics: the TTL is set only on the first hit.
	if count == 1 {
		if err := g.client.Expire(ctx, k, g.limits.Window).Err(); err != nil {
			g.log.Warn("attempt guard expire failed", zap.String("key", k), zap.Error(err))
		}
	}
}

var _ Guard = (*RedisGuard)(nil)
var _ Guard = (*MemoryGuard)(nil)
