package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	t "github.com/evanhutnik/scout-service/internal/types"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "geocode:"

// missMarker records a lookup that returned no match so it is not repeated.
const missMarker = "null"

type Geocoder interface {
	GeoCode(ctx context.Context, location string) (*t.GeoResult, error)
}

// GeoCache is a read-through Redis cache in front of a Geocoder. Redis
// failures are logged and fall through to the wrapped geocoder.
type GeoCache struct {
	next   Geocoder
	rc     *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewGeoCache(next Geocoder, rc *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *GeoCache {
	return &GeoCache{
		next:   next,
		rc:     rc,
		ttl:    ttl,
		logger: logger,
	}
}

func (g *GeoCache) GeoCode(ctx context.Context, location string) (*t.GeoResult, error) {
	key := cacheKey(location)

	cached, err := g.rc.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == missMarker {
			return nil, nil
		}
		var res t.GeoResult
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			return &res, nil
		}
		g.logger.Warnw("Dropping unreadable cached geocode", "location", location, "action", "GeoCache")
	case errors.Is(err, redis.Nil):
	default:
		g.logger.Errorw(err.Error(), "location", location, "action", "GeoCache")
	}

	res, err := g.next.GeoCode(ctx, location)
	if err != nil {
		return nil, err
	}

	value := missMarker
	if res != nil {
		b, _ := json.Marshal(res)
		value = string(b)
	}
	if err := g.rc.Set(ctx, key, value, g.ttl).Err(); err != nil {
		g.logger.Errorw(err.Error(), "location", location, "action", "GeoCache")
	}
	return res, nil
}

func cacheKey(location string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(location), " "))
}
