// cmd/code-indexer/dead-code.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/spf13/cobra"
)

var deadCodeCmd = &cobra.Command{
	Use:   "dead-code",
	Short: "List functions/methods that are never called",
	RunE:  runDeadCode,
}

var (
	deadCodePath           string
	deadCodeIncludePrivate bool
	deadCodeJSON           bool
)

func init() {
	deadCodeCmd.Flags().StringVar(&deadCodePath, "path", ".", "Project path")
	deadCodeCmd.Flags().BoolVar(&deadCodeIncludePrivate, "include-private", false, "Include names starting with _")
	deadCodeCmd.Flags().BoolVar(&deadCodeJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(deadCodeCmd)
}

func runDeadCode(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(deadCodePath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	results := query.DeadCode(idx, deadCodeIncludePrivate)

	if deadCodeJSON {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	if len(results) == 0 {
		fmt.Println("No dead code found.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\n", r.Name, r.Location)
	}
	return nil
}
