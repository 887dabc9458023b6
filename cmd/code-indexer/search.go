// cmd/code-indexer/search.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the structural symbol index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchPath  string
	searchExact bool
	searchJSON  bool
)

func init() {
	searchCmd.Flags().StringVar(&searchPath, "path", ".", "Project path")
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "Require an exact symbol name match")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := args[0]

	absPath, err := filepath.Abs(searchPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	start := time.Now()
	results := query.Search(idx, q, searchExact)

	if mlog, mErr := openMetricsLogger(absPath); mErr == nil {
		mlog.LogSearch(q, searchQueryType(), len(results), time.Since(start).Milliseconds())
		mlog.Close()
	}

	if searchJSON {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		fmt.Printf("No matches for %q.\n", q)
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\n", r.Name, r.Location)
	}
	return nil
}

func searchQueryType() string {
	if searchExact {
		return "exact"
	}
	return "substring"
}
