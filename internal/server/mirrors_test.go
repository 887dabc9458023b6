package server

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/code-indexer/internal/backend/graphmirror"
	"github.com/randalmurphal/code-indexer/internal/backend/sharedcache"
	"github.com/randalmurphal/code-indexer/internal/backend/vectormirror"
)

// TestMirrorsSyncOnInitAndReload exercises all three optional mirrors
// end-to-end against real backends, skipping whichever aren't
// configured via environment variable.
func TestMirrorsSyncOnInitAndReload(t *testing.T) {
	qdrantURL := os.Getenv("QDRANT_URL")
	neo4jURL := os.Getenv("NEO4J_URL")
	redisURL := os.Getenv("REDIS_URL")
	if qdrantURL == "" && neo4jURL == "" && redisURL == "" {
		t.Skip("no mirror backend URLs set, skipping integration test")
	}

	s, _ := newTestServer(t)
	ctx := context.Background()

	var vm *vectormirror.Mirror
	if qdrantURL != "" {
		m, err := vectormirror.New(qdrantURL, "test_server_mirror")
		require.NoError(t, err)
		defer m.Close()
		vm = m
	}

	var gm *graphmirror.Mirror
	if neo4jURL != "" {
		user := os.Getenv("NEO4J_USER")
		if user == "" {
			user = "neo4j"
		}
		pass := os.Getenv("NEO4J_PASSWORD")
		if pass == "" {
			pass = "password"
		}
		m, err := graphmirror.New(neo4jURL, user, pass, "test-server-mirror")
		require.NoError(t, err)
		defer m.Close(ctx)
		gm = m
	}

	var sc *sharedcache.Cache
	if redisURL != "" {
		c, err := sharedcache.New(redisURL)
		require.NoError(t, err)
		defer c.Close()
		sc = c
	}

	s.SetMirrors(sc, vm, gm)
	require.NoError(t, s.Init(ctx))

	_, _, err := s.Reload(ctx)
	require.NoError(t, err)

	if sc != nil {
		v, err := sc.Version(ctx, s.root)
		require.NoError(t, err)
		require.Greater(t, v, int64(0))
	}
}
