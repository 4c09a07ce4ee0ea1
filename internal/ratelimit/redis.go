package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ratelimit")

// fixedWindow increments the counter and starts the window on first use.
// Returns {count, ttl_ms}.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter whose counters live in Redis, so
// budgets survive restarts.
type RedisLimiter struct {
	rdb *redis.Client
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

func (l *RedisLimiter) Allow(ctx context.Context, rule Rule, key string) (Result, error) {
	ctx, span := tracer.Start(ctx, "RedisLimiter.Allow")
	defer span.End()

	redisKey := fmt.Sprintf("ratelimit:%s:%s", rule.Name, key)
	vals, err := fixedWindow.Run(ctx, l.rdb, []string{redisKey}, rule.Window.Milliseconds()).Int64Slice()
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("unexpected rate limit reply: %v", vals)
	}

	count, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = rule.Window
	}

	if count > int64(rule.Limit) {
		return Result{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}
	return Result{Allowed: true, Remaining: rule.Limit - int(count)}, nil
}
