package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache TTLs. Verdict badges are read far more often than they change;
// trust snapshots change only on recompute.
const (
	FactCheckCacheTTL = 5 * time.Minute
	TrustCacheTTL     = 15 * time.Minute
)

// CacheService is a Redis cache-aside layer for verdict-badge and trust
// lookups. A CacheService with a nil client degrades every operation to a
// no-op, so Redis being down never breaks reads.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService connects to Redis. If redisURL is empty or the connection
// fails, caching is disabled rather than fatal.
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{log: log}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (durable queue, health
// checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

func (c *CacheService) get(ctx context.Context, key string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (c *CacheService) set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *CacheService) del(ctx context.Context, key string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}

func (c *CacheService) GetFactCheck(ctx context.Context, postID string) ([]byte, error) {
	return c.get(ctx, factCheckKey(postID))
}

func (c *CacheService) SetFactCheck(ctx context.Context, postID string, v interface{}) error {
	return c.set(ctx, factCheckKey(postID), v, FactCheckCacheTTL)
}

func (c *CacheService) InvalidateFactCheck(ctx context.Context, postID string) error {
	return c.del(ctx, factCheckKey(postID))
}

func (c *CacheService) GetTrust(ctx context.Context, subjectType, subjectID string) ([]byte, error) {
	return c.get(ctx, trustKey(subjectType, subjectID))
}

func (c *CacheService) SetTrust(ctx context.Context, subjectType, subjectID string, v interface{}) error {
	return c.set(ctx, trustKey(subjectType, subjectID), v, TrustCacheTTL)
}

func (c *CacheService) InvalidateTrust(ctx context.Context, subjectType, subjectID string) error {
	return c.del(ctx, trustKey(subjectType, subjectID))
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func factCheckKey(postID string) string {
	return fmt.Sprintf("factcheck:%s", postID)
}

func trustKey(subjectType, subjectID string) string {
	return fmt.Sprintf("trust:%s:%s", subjectType, subjectID)
}
