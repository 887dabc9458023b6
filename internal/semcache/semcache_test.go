package semcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/code-indexer/internal/embed"
)

func TestRebuildSaveLoadRoundTrip(t *testing.T) {
	provider := embed.NewLocalProvider("")
	sources := []Source{
		{File: "a.go", Line: 3, Text: "func Hello() string"},
		{File: "b.go", Line: 9, Text: "func Goodbye() string"},
	}

	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)
	require.Len(t, cache.entries, 2)

	path := filepath.Join(t.TempDir(), "cache.ldjson")
	require.NoError(t, cache.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cache.ModelID, loaded.ModelID)
	require.Len(t, loaded.entries, 2)
	require.ElementsMatch(t, cache.entries, loaded.entries)
}

func TestLoadMissingFileReturnsEmptyCache(t *testing.T) {
	cache, err := Load(filepath.Join(t.TempDir(), "missing.ldjson"))
	require.NoError(t, err)
	require.Empty(t, cache.entries)
}

func TestReusableDetectsModelChange(t *testing.T) {
	provider := embed.NewLocalProvider("model-a")
	sources := []Source{{File: "a.go", Line: 1, Text: "x"}}
	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)

	require.True(t, cache.Reusable("model-a", sources))
	require.False(t, cache.Reusable("model-b", sources))
}

func TestReusableDetectsTextChange(t *testing.T) {
	provider := embed.NewLocalProvider("model-a")
	sources := []Source{{File: "a.go", Line: 1, Text: "original"}}
	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)

	changed := []Source{{File: "a.go", Line: 1, Text: "changed"}}
	require.False(t, cache.Reusable("model-a", changed))
}

func TestReusableDetectsCountChange(t *testing.T) {
	provider := embed.NewLocalProvider("model-a")
	sources := []Source{{File: "a.go", Line: 1, Text: "x"}}
	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)

	more := append(sources, Source{File: "b.go", Line: 2, Text: "y"})
	require.False(t, cache.Reusable("model-a", more))
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	provider := embed.NewLocalProvider("")
	sources := []Source{
		{File: "auth.go", Line: 1, Text: "Login"},
		{File: "math.go", Line: 1, Text: "Add"},
	}
	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)

	matches, err := cache.Search(context.Background(), provider, "Login", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "auth.go:Login", matches[0].ID)
}

func TestSearchDefaultsKTo20(t *testing.T) {
	provider := embed.NewLocalProvider("")
	var sources []Source
	for i := 0; i < 30; i++ {
		sources = append(sources, Source{File: "f.go", Line: i + 1, Text: "symbol text"})
	}
	cache, err := Rebuild(context.Background(), provider, sources)
	require.NoError(t, err)

	matches, err := cache.Search(context.Background(), provider, "symbol text", 0)
	require.NoError(t, err)
	require.Len(t, matches, 20)
}
