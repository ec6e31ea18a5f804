package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcampus/portal/internal/config"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestLoginThrottle_BlocksAfterLimit(t *testing.T) {
	srv, client := newMiniredis(t)
	throttle := NewLoginThrottle(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := throttle.Allow(ctx, "ada@estiam.com|10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, wait, err := throttle.Allow(ctx, "ADA@estiam.com|10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	srv.FastForward(time.Minute + time.Second)

	ok, _, err = throttle.Allow(ctx, "ada@estiam.com|10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "window elapsed")
}

func TestLoginThrottle_Reset(t *testing.T) {
	_, client := newMiniredis(t)
	throttle := NewLoginThrottle(client, 1, time.Minute)
	ctx := context.Background()

	ok, _, _ := throttle.Allow(ctx, "k")
	require.True(t, ok)
	ok, _, _ = throttle.Allow(ctx, "k")
	require.False(t, ok)

	require.NoError(t, throttle.Reset(ctx, "k"))

	ok, _, err := throttle.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_DisabledWithoutRedis(t *testing.T) {
	throttle := NewLoginThrottle(nil, 1, time.Minute)

	for i := 0; i < 5; i++ {
		ok, _, err := throttle.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, throttle.Reset(context.Background(), "k"))
}

func TestNewRedisClient_EmptyAddrDisables(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
