package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leetnote-go-api/internal/observability"
)

// Named caches used by the services.
const (
	LeetcodeAPIStats  = "leetcodeApiStats"
	UserLeetcodeStats = "userLeetcodeStats"
	ProblemDetails    = "problemDetails"
	Users             = "users"
)

var namedTTLs = map[string]time.Duration{
	LeetcodeAPIStats:  10 * time.Minute,
	UserLeetcodeStats: 5 * time.Minute,
	ProblemDetails:    10 * time.Minute,
	Users:             15 * time.Minute,
}

// Cache stores JSON encoded values in Redis under per-name TTLs.
// A Cache built without a client, or a nil *Cache, misses on every read and drops every write.
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     zerolog.Logger
}

// New builds a cache. Names without a dedicated TTL fall back to defaultTTL.
func New(client *redis.Client, defaultTTL time.Duration, logger zerolog.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}

	return &Cache{
		client:     client,
		defaultTTL: defaultTTL,
		logger:     logger.With().Str("component", "cache").Logger(),
	}
}

// TTL returns the expiry applied to entries of the named cache.
func (c *Cache) TTL(name string) time.Duration {
	if ttl, ok := namedTTLs[name]; ok {
		return ttl
	}
	if c == nil {
		return 30 * time.Minute
	}
	return c.defaultTTL
}

// Get decodes the cached entry into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, name, key string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	cached, err := c.client.Get(ctx, entryKey(name, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("cache", name).Msg("failed to read cache")
		}
		observability.CacheLookups().WithLabelValues(name, "miss").Inc()
		return false
	}

	if err := json.Unmarshal(cached, dest); err != nil {
		c.logger.Warn().Err(err).Str("cache", name).Msg("discarding undecodable cache entry")
		observability.CacheLookups().WithLabelValues(name, "miss").Inc()
		return false
	}

	observability.CacheLookups().WithLabelValues(name, "hit").Inc()
	c.logger.Debug().Str("cache", name).Str("key", key).Msg("cache hit")
	return true
}

// Set stores value under the named cache's TTL.
func (c *Cache) Set(ctx context.Context, name, key string, value interface{}) {
	if !c.enabled() {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("cache", name).Msg("failed to encode cache entry")
		return
	}

	if err := c.client.Set(ctx, entryKey(name, key), payload, c.TTL(name)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("cache", name).Msg("failed to store cache entry")
	}
}

// Evict removes the entry from the named cache.
func (c *Cache) Evict(ctx context.Context, name, key string) {
	if !c.enabled() {
		return
	}

	if err := c.client.Del(ctx, entryKey(name, key)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("cache", name).Msg("failed to evict cache entry")
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func entryKey(name, key string) string {
	return fmt.Sprintf("leetnote:%s::%s", name, key)
}
