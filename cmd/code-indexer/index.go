// cmd/code-indexer/index.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/router"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build a project index",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("path not found: %s", absPath)
	}

	repoCfg, err := config.LoadRepoConfig(absPath)
	if err != nil {
		return fmt.Errorf("load repo config: %w", err)
	}

	d := discover.New(repoCfg.IncludePatterns, repoCfg.ExcludePatterns, repoCfg.MaxFileSize)
	r := router.New()
	builder := index.New(d, r, nil, 0)

	indexPath := model.IndexRelPathFor(absPath)
	existing, err := model.LoadProjectIndex(indexPath)
	if err != nil {
		existing = nil
	}

	fmt.Printf("Indexing %s (%s)...\n", repoCfg.Name, absPath)

	start := time.Now()
	idx, result, err := builder.Build(absPath, existing)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if err := model.SaveProjectIndex(indexPath, idx); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	mlog, mErr := openMetricsLogger(absPath)
	if mErr == nil {
		mlog.LogIndex(result.FilesIndexed, result.FilesSkipped, existing != nil, time.Since(start).Milliseconds())
		mlog.Close()
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files indexed: %d\n", result.FilesIndexed)
	fmt.Printf("  Files skipped: %d\n", result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %v\n", e)
		}
	}

	return nil
}
