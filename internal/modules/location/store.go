// README: Geocode cache backed by Redis. Only positive results are stored.
package location

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"routecost/internal/types"
)

const geocodeKeyPrefix = "routecost:geocode:"

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redis, ttl: ttl}
}

func geocodeKey(query string) string {
	return geocodeKeyPrefix + strings.ToLower(normalize(query))
}

// Get returns the cached point for query. ok is false on a miss.
func (s *Store) Get(ctx context.Context, query string) (types.Point, bool, error) {
	vals, err := s.redis.HMGet(ctx, geocodeKey(query), "lat", "lng").Result()
	if err != nil {
		return types.Point{}, false, fmt.Errorf("geocode cache get: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return types.Point{}, false, nil
	}
	lat, err := parseCached(vals[0])
	if err != nil {
		return types.Point{}, false, err
	}
	lng, err := parseCached(vals[1])
	if err != nil {
		return types.Point{}, false, err
	}
	return types.Point{Lat: lat, Lng: lng}, true, nil
}

// Put stores p for query with the configured TTL.
func (s *Store) Put(ctx context.Context, query string, p types.Point) error {
	key := geocodeKey(query)
	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key,
		"lat", strconv.FormatFloat(p.Lat, 'f', -1, 64),
		"lng", strconv.FormatFloat(p.Lng, 'f', -1, 64),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("geocode cache put: %w", err)
	}
	return nil
}

func parseCached(v any) (float64, error) {
	str, ok := v.(string)
	if !ok {
		return 0, errors.New("geocode cache: unexpected value type")
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("geocode cache: %w", err)
	}
	return f, nil
}
