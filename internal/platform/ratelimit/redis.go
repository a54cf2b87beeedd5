package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter は全サーバーインスタンスで共有される固定ウィンドウのカウンターです。
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter はキーごとに window あたり limit 回までリクエストを許可するRedisLimiterを生成します。
func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// Allow は現在のウィンドウでリクエストをカウントします。
// INCR と EXPIRE NX を同一トランザクションで送るため、TTL が未設定のキーは毎回のリクエストで再設定されます。
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + ":" + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis INCR/EXPIRE %s: %w", k, err)
	}
	return incr.Val() <= l.limit, nil
}
