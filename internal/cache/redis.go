// Package cache provides the Redis-backed engagement summary cache.
//
// Entries are JSON documents under "engagement:<letter id>" with a TTL that
// is jittered by ±10% so that entries written together do not expire
// together. The guard and comment services drop a letter's entry whenever its
// tallies change, so the TTL only bounds staleness after a missed delete or a
// summary written back just after a concurrent invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/unsent-letters/internal/config"
	"github.com/tbourn/unsent-letters/internal/domain"
)

const keyPrefix = "engagement:"

// DefaultTTL applies when no positive TTL is configured.
const DefaultTTL = 30 * time.Second

// Redis is an engagement cache backed by a go-redis client.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to cfg.Addr and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisFromClient(rdb, cfg.TTL), nil
}

// NewRedisFromClient wraps an existing client without pinging it.
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Key returns the Redis key for letterID.
func Key(letterID string) string { return keyPrefix + letterID }

// Get returns the cached summary. A missing key is a miss, not an error.
func (c *Redis) Get(ctx context.Context, letterID string) (*domain.Engagement, bool, error) {
	raw, err := c.client.Get(ctx, Key(letterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Set stores e under its letter id.
func (c *Redis) Set(ctx context.Context, e *domain.Engagement) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(e.LetterID), raw, jitter(c.ttl)).Err()
}

// Invalidate deletes the entry for letterID.
func (c *Redis) Invalidate(ctx context.Context, letterID string) error {
	return c.client.Del(ctx, Key(letterID)).Err()
}

// Close releases the underlying client.
func (c *Redis) Close() error { return c.client.Close() }

func decode(raw []byte) (*domain.Engagement, error) {
	var e domain.Engagement
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode engagement: %w", err)
	}
	if e.Reactions == nil {
		e.Reactions = map[string]int64{}
	}
	return &e, nil
}

// jitter spreads base by ±10%.
func jitter(base time.Duration) time.Duration {
	span := int64(base / 5)
	if span <= 0 {
		return base
	}
	d := base + time.Duration(rand.Int63n(span)-span/2)
	if d <= 0 {
		return base
	}
	return d
}
