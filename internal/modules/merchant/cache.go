package merchant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "merchant:config:"

// CachedSource keeps a JSON snapshot of each merchant's raw configuration in
// Redis. Redis failures fall through to the wrapped source.
type CachedSource struct {
	next   Source
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedSource {
	return &CachedSource{next: next, client: client, ttl: ttl, log: log}
}

func cacheKey(merchantID string) string {
	return cacheKeyPrefix + merchantID
}

func (c *CachedSource) Load(ctx context.Context, merchantID string) (RawConfig, error) {
	key := cacheKey(merchantID)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var raw RawConfig
		if err := json.Unmarshal(data, &raw); err == nil {
			c.log.Debug("merchant config cache hit", zap.String("merchant_id", merchantID))
			return raw, nil
		}
		c.log.Warn("discarding unreadable merchant config snapshot", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("merchant config cache get failed", zap.String("key", key), zap.Error(err))
	}

	raw, err := c.next.Load(ctx, merchantID)
	if err != nil {
		return RawConfig{}, err
	}

	if data, err := json.Marshal(raw); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("merchant config cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return raw, nil
}

// Invalidate drops the snapshot so the next Load reads the source.
func (c *CachedSource) Invalidate(ctx context.Context, merchantID string) error {
	if err := c.client.Del(ctx, cacheKey(merchantID)).Err(); err != nil {
		return fmt.Errorf("invalidate merchant config %s: %w", merchantID, err)
	}
	c.log.Info("merchant config cache invalidated", zap.String("merchant_id", merchantID))
	return nil
}
