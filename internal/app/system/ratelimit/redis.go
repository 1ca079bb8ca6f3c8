package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisLimiter is a Window shared by every replica that points at the same
// Redis. Each key is an INCR counter whose TTL is set on the first hit.
type RedisLimiter struct {
	rdb      *redis.Client
	prefix   string
	limit    int
	duration time.Duration
	log      *zap.Logger
}

// NewRedis creates a Redis-backed window. Keys are stored as prefix+key.
func NewRedis(rdb *redis.Client, prefix string, limit int, duration time.Duration, log *zap.Logger) *RedisLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, duration: duration, log: log}
}

// Allow increments the key's counter. When Redis is unreachable the attempt
// is allowed and the failure is logged.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		l.log.Warn("rate limit counter unavailable", zap.String("key", k), zap.Error(err))
		return true
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.duration).Err(); err != nil {
			l.log.Warn("rate limit expiry not set", zap.String("key", k), zap.Error(err))
		}
	}
	return n <= int64(l.limit)
}

// Reset deletes the key's counter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) {
	if err := l.rdb.Del(ctx, l.prefix+key).Err(); err != nil {
		l.log.Warn("rate limit reset failed", zap.String("key", l.prefix+key), zap.Error(err))
	}
}

// NewRedisLoginLimiter keeps login counters in Redis so several replicas
// share one budget.
func NewRedisLoginLimiter(rdb *redis.Client, ipLimit, emailLimit int, log *zap.Logger) *LoginLimiter {
	return NewLoginLimiter(
		NewRedis(rdb, "studycircle:login:", ipLimit, time.Minute, log),
		NewRedis(rdb, "studycircle:login:", emailLimit, 5*time.Minute, log),
	)
}
