package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New connects to redis and verifies the connection. addr is either host:port
// or a redis:// URL carrying credentials and database number.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := options(addr)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}

	return client, nil
}

func options(addr string) (*redis.Options, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("platform/cache: parse url: %w", err)
		}
		return opts, nil
	}
	if addr == "" {
		return nil, fmt.Errorf("platform/cache: address required")
	}
	return &redis.Options{Addr: addr}, nil
}
