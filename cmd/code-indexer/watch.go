// cmd/code-indexer/watch.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/router"
	"github.com/randalmurphal/code-indexer/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project and incrementally re-index on changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

var watchDaemon bool

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Detach logging to a per-project log file instead of stdout")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	var logger *slog.Logger
	if watchDaemon {
		logPath := filepath.Join(absPath, ".context", ".project", "watch.log")
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	repoCfg, err := config.LoadRepoConfig(absPath)
	if err != nil {
		return fmt.Errorf("load repo config: %w", err)
	}

	d := discover.New(repoCfg.IncludePatterns, repoCfg.ExcludePatterns, repoCfg.MaxFileSize)
	r := router.New()
	builder := index.New(d, r, logger, 0)

	indexPath := model.IndexRelPathFor(absPath)
	idx, err := model.LoadProjectIndex(indexPath)
	if err != nil {
		logger.Info("no existing index, building one before watching")
		built, _, buildErr := builder.Build(absPath, nil)
		if buildErr != nil {
			return fmt.Errorf("initial index build failed: %w", buildErr)
		}
		if err := model.SaveProjectIndex(indexPath, built); err != nil {
			return fmt.Errorf("save index: %w", err)
		}
		idx = built
	}

	mlog, mErr := openMetricsLogger(absPath)
	if mErr == nil {
		defer mlog.Close()
	}

	onBatch := func(ctx context.Context, paths []string) error {
		start := time.Now()
		result, err := builder.Update(absPath, idx, paths)
		if err != nil {
			return err
		}
		if err := model.SaveProjectIndex(indexPath, idx); err != nil {
			return err
		}
		if mlog != nil {
			mlog.LogIndex(result.FilesIndexed, result.FilesSkipped, true, time.Since(start).Milliseconds())
		}
		logger.Info("reindexed", "files", len(paths), "indexed", result.FilesIndexed)
		return nil
	}

	w := watch.New(absPath, onBatch, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", absPath)
	return w.Run(ctx)
}
