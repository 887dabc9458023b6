// Package watch re-enters the Index Builder on filesystem changes. It
// replaces polling git HEAD on a fixed ticker with real fsnotify events,
// debounced into a single coalesced batch per window so a burst of saves
// (an editor writing several files, a branch checkout) produces one
// incremental update instead of one per event.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// skippedDirs are directory names never worth a watch descriptor: large,
// churn-heavy, and never part of a source index.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".code-index":  true,
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// debounceWindow is how long the batcher waits after the last event
// before submitting the accumulated paths, per spec.md's 500-1000ms
// coalescing window.
const debounceWindow = 750 * time.Millisecond

// UpdateFunc re-enters the Index Builder with a batch of changed paths,
// relative to the watched root.
type UpdateFunc func(ctx context.Context, paths []string) error

// Watcher debounces fsnotify events on a directory tree and submits
// coalesced batches to an UpdateFunc.
type Watcher struct {
	root    string
	onBatch UpdateFunc
	logger  *slog.Logger
}

// New constructs a Watcher rooted at root. logger defaults to
// slog.Default() if nil.
func New(root string, onBatch UpdateFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{root: root, onBatch: onBatch, logger: logger}
}

// Run watches root recursively until ctx is cancelled, debouncing events
// into batches submitted to the Watcher's UpdateFunc. It returns when ctx
// is done or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.root); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[ev.Name] = struct{}{}
			if ev.Op&fsnotify.Create != 0 {
				// A newly created directory needs its own watch so files
				// added under it are seen too.
				_ = addRecursive(fsw, ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)

		case <-timerC():
			timer = nil
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				rel, err := filepath.Rel(w.root, p)
				if err != nil {
					continue
				}
				paths = append(paths, filepath.ToSlash(rel))
			}
			pending = make(map[string]struct{})
			if err := w.onBatch(ctx, paths); err != nil {
				w.logger.Error("batch update failed", "error", err, "files", len(paths))
			}
		}
	}
}
