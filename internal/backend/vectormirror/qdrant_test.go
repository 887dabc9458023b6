package vectormirror

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorIntegration(t *testing.T) {
	if os.Getenv("QDRANT_URL") == "" {
		t.Skip("QDRANT_URL not set, skipping integration test")
	}

	ctx := context.Background()
	mirror, err := New(os.Getenv("QDRANT_URL"), "test_semantic_cache")
	require.NoError(t, err)
	defer mirror.Close()

	require.NoError(t, mirror.EnsureCollection(ctx, 4))

	entries := []Entry{
		{ID: "a.go:1", File: "a.go", Line: 1, Text: "func Foo", Vec: []float32{1, 0, 0, 0}},
		{ID: "b.go:1", File: "b.go", Line: 1, Text: "func Bar", Vec: []float32{0, 1, 0, 0}},
	}
	require.NoError(t, mirror.Upsert(ctx, entries))

	matches, err := mirror.Search(ctx, []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.go", matches[0].File)
}
