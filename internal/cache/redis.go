// Package cache holds the Redis-backed topic cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/studyquiz/internal/topics"
)

const defaultTTL = time.Hour

// RedisCache stores topic outlines as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ topics.Cache = (*RedisCache)(nil)

// NewRedisCache wraps client. A non-positive ttl uses one hour.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisCache(client, ttl), nil
}

// Get returns the cached topics for key. A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]topics.Topic, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var ts []topics.Topic
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, false, fmt.Errorf("decode cached topics: %w", err)
	}
	return ts, true, nil
}

// Set stores ts under key.
func (c *RedisCache) Set(ctx context.Context, key string, ts []topics.Topic) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
