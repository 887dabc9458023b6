// cmd/code-indexer/status.go
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/semcache"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show index and semantic cache status",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		fmt.Println("No index found. Run 'code-indexer index <path>' to create one.")
		return nil
	}

	fmt.Println("Index Status:")
	fmt.Printf("  Project root:  %s\n", idx.ProjectRoot)
	fmt.Printf("  Schema:        %s\n", idx.SchemaVersion)
	fmt.Printf("  Files:         %d\n", len(idx.Files))
	fmt.Printf("  Symbols:       %d\n", len(idx.SymbolIndex))
	fmt.Printf("  Last indexed:  %s\n", idx.UpdatedAt.Format(time.RFC3339))

	cache, err := semcache.Load(semcache.Path(absPath))
	if err != nil {
		fmt.Println("  Semantic cache: none")
		return nil
	}
	fmt.Printf("  Semantic cache: %d vectors\n", cache.Len())

	return nil
}
