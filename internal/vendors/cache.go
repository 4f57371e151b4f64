package vendors

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/societyhub/societyhub/internal/shared"
)

// CachedDirectory fronts a Directory with a redis cache. Concurrent
// misses for the same vendor share one upstream lookup.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCachedDirectory wraps next. A nil client disables caching.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedDirectory{next: next, client: client, ttl: ttl, logger: logger}
}

func (d *CachedDirectory) VendorName(ctx context.Context, vendorID string) (string, error) {
	if d.client == nil {
		return d.next.VendorName(ctx, vendorID)
	}
	key := shared.VendorNameKey(vendorID)
	name, err := d.client.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, redis.Nil) {
		d.logger.Warn("vendor cache read", slog.String("vendor_id", vendorID), slog.Any("error", err))
	}

	v, err, _ := d.group.Do(vendorID, func() (interface{}, error) {
		name, err := d.next.VendorName(ctx, vendorID)
		if err != nil {
			return "", err
		}
		if err := d.client.Set(ctx, key, name, d.ttl).Err(); err != nil {
			d.logger.Warn("vendor cache write", slog.String("vendor_id", vendorID), slog.Any("error", err))
		}
		return name, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops a cached name.
func (d *CachedDirectory) Invalidate(ctx context.Context, vendorID string) error {
	if d.client == nil {
		return nil
	}
	return d.client.Del(ctx, shared.VendorNameKey(vendorID)).Err()
}
