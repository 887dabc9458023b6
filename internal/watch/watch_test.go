package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherCoalescesBurstIntoOneBatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))

	var mu sync.Mutex
	var batches [][]string
	onBatch := func(_ context.Context, paths []string) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, paths)
		return nil
	}

	w := New(root, onBatch, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nvar X = 1\n"), 0o644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package a\n"), 0o644))

	time.Sleep(2 * debounceWindow)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1, "a burst of writes within the debounce window should coalesce into one batch")
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	w := New(root, func(context.Context, []string) error { return nil }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancel")
	}
}
