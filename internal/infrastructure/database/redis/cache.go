package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

// ErrCacheMiss is returned when a key is absent or holds a cached null.
var ErrCacheMiss = apperrors.New(apperrors.ErrCodeNotFound, "cache miss")

// nullMarker caches a confirmed remote miss so repeated lookups for unknown
// names do not keep hitting the source.
const nullMarker = "__null__"

// Cache memoises JSON-serialisable values.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
		loader func(ctx context.Context) (interface{}, error)) error
}

type redisCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	group        singleflight.Group
}

// CacheOption adjusts cache construction.
type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// NewCache builds a Cache on top of client.
func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &redisCache{
		client:       client,
		logger:       log,
		prefix:       "dockprep:",
		defaultTTL:   time.Hour,
		nullCacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expirations by +/- 10% to avoid stampedes when a batch
// of jobs caches the same class of keys at once.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache get failed")
	}
	if string(data) == nullMarker {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cache value not serialisable")
	}
	return c.client.rdb.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.client.rdb.Del(ctx, fullKeys...).Err()
}

// GetOrSet returns the cached value or, on a miss, invokes loader under
// singleflight so concurrent requests for the same key trigger one load.  A
// nil loader result is cached briefly as a null and reported as a miss.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
	loader func(ctx context.Context) (interface{}, error)) error {

	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		return err
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if v == nil {
			c.client.rdb.Set(ctx, c.fullKey(key), nullMarker, c.nullCacheTTL)
			return nil, nil
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("failed to populate cache", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrCacheMiss
	}

	data, err := json.Marshal(val)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cache value not serialisable")
	}
	return json.Unmarshal(data, dest)
}
