// cmd/code-indexer/update.go
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/router"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [files...]",
	Short: "Incrementally re-index specific files",
	Long:  `Re-parses the given files (relative to --path) and merges the result into the existing index, without rescanning the whole tree.`,
	RunE:  runUpdate,
}

var updatePath string

func init() {
	updateCmd.Flags().StringVar(&updatePath, "path", ".", "Project path")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one file path is required")
	}

	absPath, err := filepath.Abs(updatePath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	repoCfg, err := config.LoadRepoConfig(absPath)
	if err != nil {
		return fmt.Errorf("load repo config: %w", err)
	}

	indexPath := model.IndexRelPathFor(absPath)
	idx, err := model.LoadProjectIndex(indexPath)
	if err != nil {
		return fmt.Errorf("no existing index at %s, run 'code-indexer index' first: %w", absPath, err)
	}

	d := discover.New(repoCfg.IncludePatterns, repoCfg.ExcludePatterns, repoCfg.MaxFileSize)
	r := router.New()
	builder := index.New(d, r, nil, 0)

	start := time.Now()
	result, err := builder.Update(absPath, idx, args)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if err := model.SaveProjectIndex(indexPath, idx); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	if mlog, mErr := openMetricsLogger(absPath); mErr == nil {
		mlog.LogIndex(result.FilesIndexed, result.FilesSkipped, true, time.Since(start).Milliseconds())
		mlog.Close()
	}

	fmt.Printf("Updated %d file(s): %d indexed, %d skipped\n", len(args), result.FilesIndexed, result.FilesSkipped)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %v\n", e)
		}
	}
	return nil
}
