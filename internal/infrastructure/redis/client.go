package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultPingTimeout bounds the connection check in NewClient.
const defaultPingTimeout = 5 * time.Second

// NewClient connects to the Redis holding cached grids and idempotency keys
// and verifies it with a ping. Errors name the address, never the URL, so
// credentials stay out of logs.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := HealthCheck(client)(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// HealthCheck returns a readiness check that pings client.
func HealthCheck(client *redis.Client) func(context.Context) error {
	addr := client.Options().Addr
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis at %s: %w", addr, err)
		}
		return nil
	}
}
