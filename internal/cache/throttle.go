package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttlePrefix = "smartcampus:login:"

// LoginThrottle counts login attempts per key in a fixed redis window.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLoginThrottle returns a throttle allowing limit attempts per window. A
// nil client or a non-positive limit lets everything through.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, limit: limit, window: window}
}

// Allow records one attempt for key and reports whether it is within the
// limit. The remaining wait is returned when it is not.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if t == nil || t.client == nil || t.limit <= 0 {
		return true, 0, nil
	}

	k := throttleKey(key)
	count, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("throttle incr: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, k, t.window).Err(); err != nil {
			return false, 0, fmt.Errorf("throttle expire: %w", err)
		}
	}

	if count <= int64(t.limit) {
		return true, 0, nil
	}

	ttl, err := t.client.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = t.window
	}
	return false, ttl, nil
}

// Reset forgets the attempts recorded for key.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Del(ctx, throttleKey(key)).Err()
}

func throttleKey(key string) string {
	return throttlePrefix + strings.ToLower(strings.TrimSpace(key))
}
