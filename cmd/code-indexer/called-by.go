// cmd/code-indexer/called-by.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/callgraph"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/spf13/cobra"
)

var calledByCmd = &cobra.Command{
	Use:   "called-by [symbol]",
	Short: "List the symbols that call a given symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalledBy,
}

var (
	calledByPath string
	calledByJSON bool
)

func init() {
	calledByCmd.Flags().StringVar(&calledByPath, "path", ".", "Project path")
	calledByCmd.Flags().BoolVar(&calledByJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(calledByCmd)
}

func runCalledBy(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(calledByPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	graph := callgraph.Build(idx)
	callers := graph.Incoming(args[0])

	if calledByJSON {
		data, _ := json.MarshalIndent(callers, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	if len(callers) == 0 {
		fmt.Println("No callers found.")
		return nil
	}
	for _, c := range callers {
		fmt.Printf("%s\t%s:%d\n", c.Name, c.File, c.Line)
	}
	return nil
}
