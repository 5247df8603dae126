package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ridefare/internal/types"
)

type countingProvider struct {
	km    float64
	err   error
	calls int
}

func (c *countingProvider) DistanceKm(context.Context, types.GeoPoint, types.GeoPoint) (float64, error) {
	c.calls++
	return c.km, c.err
}

func newCachedProvider(t *testing.T, next DistanceProvider) (*CachedDistanceProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedDistanceProvider(next, client, time.Hour, zap.NewNop()), mr
}

func TestRouteKey(t *testing.T) {
	assert.Equal(t, "route:u09tvw0f6:u09tvw0f6", routeKey(paris, paris))
	assert.NotEqual(t, routeKey(paris, cdg), routeKey(cdg, paris))

	nearby := types.GeoPoint{Lat: paris.Lat + 0.000001, Lon: paris.Lon}
	assert.Equal(t, routeKey(paris, cdg), routeKey(nearby, cdg))
}

func TestCachedDistanceProvider(t *testing.T) {
	next := &countingProvider{km: 31.7}
	cached, mr := newCachedProvider(t, next)
	ctx := context.Background()

	for range 3 {
		km, err := cached.DistanceKm(ctx, cdg, paris)
		require.NoError(t, err)
		assert.Equal(t, 31.7, km)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, time.Hour, mr.TTL(routeKey(cdg, paris)))

	_, err := cached.DistanceKm(ctx, paris, cdg)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedDistanceProvider_ErrorNotCached(t *testing.T) {
	next := &countingProvider{err: errors.New("quota exceeded")}
	cached, mr := newCachedProvider(t, next)

	_, err := cached.DistanceKm(context.Background(), cdg, paris)
	assert.Error(t, err)
	assert.False(t, mr.Exists(routeKey(cdg, paris)))
}
