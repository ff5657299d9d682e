package availability

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicflow/availability-api/internal/model"
	"github.com/clinicflow/availability-api/pkg/circuitbreaker"
)

// Store is the cache backing the query service. Implementations must be
// safe for concurrent use; a stampede on a cold key is tolerated, both
// writers store equivalent data.
type Store interface {
	Get(ctx context.Context, key string) ([]model.DayAvailabilityData, bool)
	Set(ctx context.Context, key string, data []model.DayAvailabilityData)
	Flush(ctx context.Context) error
	Keys(ctx context.Context) []string
	Size(ctx context.Context) int
}

type memoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore returns an in-process TTL store.
func NewMemoryStore(ttl, cleanupInterval time.Duration) Store {
	return &memoryStore{cache: gocache.New(ttl, cleanupInterval)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]model.DayAvailabilityData, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	data, ok := v.([]model.DayAvailabilityData)
	return data, ok
}

func (s *memoryStore) Set(_ context.Context, key string, data []model.DayAvailabilityData) {
	s.cache.Set(key, data, gocache.DefaultExpiration)
}

func (s *memoryStore) Flush(_ context.Context) error {
	s.cache.Flush()
	return nil
}

func (s *memoryStore) Keys(_ context.Context) []string {
	items := s.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

func (s *memoryStore) Size(_ context.Context) int {
	return s.cache.ItemCount()
}

const redisKeyPrefix = "availability:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	cb     *circuitbreaker.CircuitBreaker
	logger zerolog.Logger
}

// NewRedisStore returns a redis-backed store so peer instances share
// cached query results. Redis failures degrade to cache misses; they
// never fail the query.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "availability-cache",
			MaxRequests: 5,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}),
		logger: logger,
	}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]model.DayAvailabilityData, bool) {
	var payload []byte
	missed := false
	err := s.cb.Execute(func() error {
		b, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
		if err == redis.Nil {
			// A miss is a healthy response, not a breaker failure.
			missed = true
			return nil
		}
		payload = b
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if missed {
		return nil, false
	}

	var data []model.DayAvailabilityData
	if err := json.Unmarshal(payload, &data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, treating as miss")
		return nil, false
	}
	return data, true
}

func (s *redisStore) Set(ctx context.Context, key string, data []model.DayAvailabilityData) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to marshal cache entry")
		return
	}
	err = s.cb.Execute(func() error {
		return s.client.Set(ctx, redisKeyPrefix+key, payload, s.ttl).Err()
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *redisStore) Flush(ctx context.Context) error {
	keys := s.Keys(ctx)
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = redisKeyPrefix + k
	}
	return s.cb.Execute(func() error {
		return s.client.Del(ctx, prefixed...).Err()
	})
}

func (s *redisStore) Keys(ctx context.Context) []string {
	var keys []string
	err := s.cb.Execute(func() error {
		iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val()[len(redisKeyPrefix):])
		}
		return iter.Err()
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache key scan failed")
		return nil
	}
	return keys
}

func (s *redisStore) Size(ctx context.Context) int {
	return len(s.Keys(ctx))
}
