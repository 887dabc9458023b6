package graphmirror

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMirror(t *testing.T) *Mirror {
	t.Helper()
	uri := os.Getenv("NEO4J_URL")
	if uri == "" {
		t.Skip("NEO4J_URL not set, skipping integration test")
	}

	username := os.Getenv("NEO4J_USER")
	if username == "" {
		username = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")
	if password == "" {
		password = "password"
	}

	mirror, err := New(uri, username, password, "test-project")
	require.NoError(t, err)
	return mirror
}

func TestMirrorIntegration(t *testing.T) {
	mirror := testMirror(t)
	ctx := context.Background()
	defer mirror.Close(ctx)

	require.NoError(t, mirror.EnsureSchema(ctx))
	require.NoError(t, mirror.ReplaceProject(ctx))

	t.Run("UpsertFile", func(t *testing.T) {
		err := mirror.UpsertFile(ctx, File{Path: "a.go", Hash: "h1"})
		assert.NoError(t, err)
		err = mirror.UpsertFile(ctx, File{Path: "b.go", Hash: "h2"})
		assert.NoError(t, err)
	})

	t.Run("LinkImport", func(t *testing.T) {
		err := mirror.LinkImport(ctx, "a.go", "b.go")
		assert.NoError(t, err)
	})

	t.Run("UpsertSymbol", func(t *testing.T) {
		err := mirror.UpsertSymbol(ctx, Symbol{Name: "Foo", Kind: "function", FilePath: "a.go", StartLine: 10})
		assert.NoError(t, err)
		err = mirror.UpsertSymbol(ctx, Symbol{Name: "Bar", Kind: "function", FilePath: "b.go", StartLine: 20})
		assert.NoError(t, err)
	})

	t.Run("LinkCall", func(t *testing.T) {
		err := mirror.LinkCall(ctx, "a.go", 10, "Bar")
		assert.NoError(t, err)
	})

	t.Run("Impact", func(t *testing.T) {
		paths, err := mirror.Impact(ctx, "b.go", 3)
		require.NoError(t, err)
		assert.Contains(t, paths, "a.go")
	})

	require.NoError(t, mirror.ReplaceProject(ctx))
}

func TestDepthLiteralClamps(t *testing.T) {
	assert.Equal(t, "1", depthLiteral(0))
	assert.Equal(t, "5", depthLiteral(5))
	assert.Equal(t, "50", depthLiteral(100))
}
