package geocoder

import (
	"context"
	"errors"
	"time"

	"github.com/sahilchouksey/devcamper-api/utils/cache"
	"go.uber.org/zap"
)

// DefaultCacheTTL keeps geocoded addresses for a week
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cached remembers lookups of the wrapped geocoder in Redis. Cache failures
// are logged and the lookup goes to the provider.
type Cached struct {
	next   Geocoder
	cache  *cache.RedisCache
	ttl    time.Duration
	logger *zap.Logger
}

var _ Geocoder = (*Cached)(nil)

// NewCached wraps next with a Redis cache
func NewCached(next Geocoder, redisCache *cache.RedisCache, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: redisCache, ttl: ttl, logger: logger}
}

func cacheKey(address string) string {
	return "geocode:" + normalize(address)
}

func (c *Cached) Geocode(ctx context.Context, address string) (*Location, error) {
	key := cacheKey(address)

	var loc Location
	err := c.cache.GetJSON(ctx, key, &loc)
	if err == nil {
		return &loc, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}

	found, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, found, c.ttl); err != nil {
		c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return found, nil
}
