package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridefare/internal/types"
)

// geohashPrecision of 9 characters is a cell of roughly 5 m.
const geohashPrecision = 9

// CachedDistanceProvider memoizes route distances in Redis, keyed by the
// geohash cells of both endpoints. Direction matters: A->B and B->A differ.
type CachedDistanceProvider struct {
	next   DistanceProvider
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedDistanceProvider(next DistanceProvider, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedDistanceProvider {
	return &CachedDistanceProvider{next: next, client: client, ttl: ttl, log: log}
}

func routeKey(from, to types.GeoPoint) string {
	return fmt.Sprintf("route:%s:%s",
		geohash.EncodeWithPrecision(from.Lat, from.Lon, geohashPrecision),
		geohash.EncodeWithPrecision(to.Lat, to.Lon, geohashPrecision))
}

func (c *CachedDistanceProvider) DistanceKm(ctx context.Context, from, to types.GeoPoint) (float64, error) {
	key := routeKey(from, to)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if km, perr := strconv.ParseFloat(val, 64); perr == nil {
			return km, nil
		}
		c.log.Warn("discarding unreadable route distance", zap.String("key", key), zap.String("value", val))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("route cache get failed", zap.String("key", key), zap.Error(err))
	}

	km, err := c.next.DistanceKm(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.log.Warn("route cache set failed", zap.String("key", key), zap.Error(err))
	}
	return km, nil
}
