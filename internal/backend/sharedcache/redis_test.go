package sharedcache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}

	cache, err := New(url)
	if err != nil {
		t.Skip("Redis not available")
	}
	return cache
}

func TestCacheGetSet(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	key := "test:result:abc123"
	value := `{"results": []}`

	err := cache.Set(ctx, key, value, time.Minute)
	require.NoError(t, err)

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCacheVersionBump(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()
	project := "test-project-version"

	_ = cache.client.Del(ctx, versionKey(project))

	version, err := cache.Version(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	newVersion, err := cache.BumpVersion(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, int64(1), newVersion)

	version, err = cache.Version(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	_ = cache.client.Del(ctx, versionKey(project))
}

func TestCacheInvalidate(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()
	project := "test-project-invalidate"

	_ = cache.Set(ctx, "result:"+project+":search:aaa:1", "1", time.Minute)
	_ = cache.Set(ctx, "result:"+project+":search:bbb:1", "2", time.Minute)
	_ = cache.Set(ctx, "result:other-project:search:ccc:1", "3", time.Minute)

	err := cache.Invalidate(ctx, project)
	require.NoError(t, err)

	got, _ := cache.Get(ctx, "result:"+project+":search:aaa:1")
	assert.Empty(t, got)
	got, _ = cache.Get(ctx, "result:"+project+":search:bbb:1")
	assert.Empty(t, got)

	got, _ = cache.Get(ctx, "result:other-project:search:ccc:1")
	assert.Equal(t, "3", got)

	_ = cache.client.Del(ctx, "result:other-project:search:ccc:1")
}

func TestResultCacheKey(t *testing.T) {
	key := ResultCacheKey("proj", "search", "hello world", 42)
	assert.Contains(t, key, "result:proj:search:")
	assert.Contains(t, key, ":42")

	key2 := ResultCacheKey("proj", "search", "hello world", 42)
	assert.Equal(t, key, key2)

	key3 := ResultCacheKey("proj", "search", "goodbye world", 42)
	assert.NotEqual(t, key, key3)

	key4 := ResultCacheKey("proj", "search", "hello world", 43)
	assert.NotEqual(t, key, key4)
}
