// Package cache provides Valkey (Redis-compatible) client initialization
// and a JSON read cache for article responses. The cache is optional: the
// service degrades to direct DB reads when Valkey is unreachable.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds the startup ping. Valkey being down must not stall
// boot; the caller logs the error and runs without the cache.
const connectTimeout = 5 * time.Second

// ConnectValkey creates a Valkey client and verifies the connection with a
// ping. A returned error means the cache is unavailable, not that the
// service cannot run.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
