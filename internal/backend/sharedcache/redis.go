// Package sharedcache optionally mirrors the index version counter into
// Redis so multiple Resident Server instances watching the same project
// (e.g. across a team's machines via a shared dev box) observe each
// other's invalidate-file and reload events. A single-instance install
// never needs this; the on-disk index is authoritative regardless.
package sharedcache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides a shared index-version counter and query result cache
// over Redis.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at url and verifies the connection.
func New(url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Version returns the current index version for a project.
func (c *Cache) Version(ctx context.Context, project string) (int64, error) {
	val, err := c.client.Get(ctx, versionKey(project)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// BumpVersion increments the index version, signaling other Resident
// Server instances watching this project that their snapshot is stale.
func (c *Cache) BumpVersion(ctx context.Context, project string) (int64, error) {
	return c.client.Incr(ctx, versionKey(project)).Result()
}

// Get retrieves a cached search/semsearch result blob. Returns an empty
// string with no error if the key is absent.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stores a cached result blob with a TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Invalidate drops every cached result for a project, called after a
// file invalidation bumps the index version.
func (c *Cache) Invalidate(ctx context.Context, project string) error {
	pattern := "result:" + project + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func versionKey(project string) string {
	return "index:version:" + project
}

// ResultCacheKey derives a cache key for a query result keyed to the
// index version it was computed against, so a version bump naturally
// misses instead of serving stale results.
func ResultCacheKey(project, queryType, query string, version int64) string {
	h := sha256.Sum256([]byte(query))
	return fmt.Sprintf("result:%s:%s:%x:%d", project, queryType, h[:8], version)
}
