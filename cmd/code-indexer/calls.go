// cmd/code-indexer/calls.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/callgraph"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/spf13/cobra"
)

var callsCmd = &cobra.Command{
	Use:   "calls [symbol]",
	Short: "List the symbols a given symbol calls",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalls,
}

var (
	callsPath string
	callsJSON bool
)

func init() {
	callsCmd.Flags().StringVar(&callsPath, "path", ".", "Project path")
	callsCmd.Flags().BoolVar(&callsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(callsCmd)
}

func runCalls(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(callsPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	graph := callgraph.Build(idx)
	calls, ok := graph.Outgoing(args[0])
	if !ok {
		return fmt.Errorf("symbol not found: %s", args[0])
	}
	return printStringList(calls, callsJSON, "No outgoing calls.")
}
