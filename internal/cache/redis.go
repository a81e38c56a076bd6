package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or caching is disabled.
var ErrMiss = redis.Nil

// Cache is an optional Redis-backed read cache for API snapshot responses.
// A Cache built without a Redis URL is a no-op: Set and Delete succeed,
// Get always misses.
type Cache struct {
	client  *redis.Client
	enabled bool
}

// New connects to Redis if redisURL is non-empty. Connection failures
// disable caching rather than failing startup.
func New(redisURL string) *Cache {
	if redisURL == "" {
		log.Println("Redis URL not provided, caching disabled")
		return &Cache{}
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Failed to parse Redis URL: %v, caching disabled", err)
		return &Cache{}
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Failed to connect to Redis: %v, caching disabled", err)
		client.Close()
		return &Cache{}
	}

	log.Println("Redis cache initialized successfully")
	return &Cache{client: client, enabled: true}
}

// Enabled reports whether a live Redis connection backs this cache.
func (c *Cache) Enabled() bool { return c.enabled }

// Close releases the Redis connection.
func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Set stores a JSON-encoded value with the given expiration.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a JSON-encoded value into dest. Returns ErrMiss when the
// key is not cached.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.enabled {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}

	return c.client.Del(ctx, key).Err()
}
