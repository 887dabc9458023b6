// cmd/code-indexer/invalidate.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/backend/sharedcache"
	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate-file [file-path]",
	Short: "Mark a file as stale after an external edit",
	Long: `Bumps the project's shared index version so other Resident Server
instances watching the same project know their snapshot is stale. Intended
for editor-hook integration (e.g. a PostToolUse hook after an agent edit).
A no-op if no shared-cache URL is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runInvalidateFile,
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidateFile(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil
	}

	cfg := config.DefaultConfig()
	if cfg.Storage.RedisURL == "" {
		return nil
	}

	shared, err := sharedcache.New(cfg.Storage.RedisURL)
	if err != nil {
		return nil
	}
	defer shared.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The project key is the nearest ancestor directory holding a built
	// index (the root a Resident Server bumps on reload); the file's own
	// directory is used when none is found.
	project := filepath.Dir(absPath)
	for dir := project; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(model.IndexRelPathFor(dir)); err == nil {
			project = dir
			break
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	newVersion, err := shared.BumpVersion(ctx, project)
	if err != nil {
		return nil
	}
	if err := shared.Invalidate(ctx, project); err != nil {
		return nil
	}

	fmt.Fprintf(os.Stderr, "[code-index] Marked %s stale (version: %d)\n", filepath.Base(filePath), newVersion)
	return nil
}
