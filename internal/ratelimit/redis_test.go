package ratelimit

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testRedisURL string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		// Without Docker the Redis tests skip; the in-memory tests still run.
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(m.Run())
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}
	testRedisURL = uri

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() || testRedisURL == "" {
		t.Skip("skipping integration test")
	}

	opts, err := redis.ParseURL(testRedisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	require.NoError(t, client.FlushAll(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	l := NewRedisLimiter(rdb)

	for i := 0; i < AuthRule.Limit; i++ {
		res, err := l.Allow(ctx, AuthRule, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, AuthRule.Limit-i-1, res.Remaining)
	}

	res, err := l.Allow(ctx, AuthRule, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, AuthRule.Window)

	res, err = l.Allow(ctx, AuthRule, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiter_WindowExpires(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	l := NewRedisLimiter(rdb)
	rule := Rule{Name: "short", Limit: 1, Window: 200 * time.Millisecond}

	res, err := l.Allow(ctx, rule, "client")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, rule, "client")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(300 * time.Millisecond)

	res, err = l.Allow(ctx, rule, "client")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisLimiter_ConnectionError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	_, err := NewRedisLimiter(rdb).Allow(context.Background(), AuthRule, "client")
	assert.Error(t, err)
}
