// cmd/code-indexer/deps.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps [file]",
	Short: "List a file's imports, importers, or orphaned files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDeps,
}

var (
	depsPath    string
	depsReverse bool
	depsOrphans bool
	depsJSON    bool
)

func init() {
	depsCmd.Flags().StringVar(&depsPath, "path", ".", "Project path")
	depsCmd.Flags().BoolVar(&depsReverse, "reverse", false, "Show files that import the target instead of its imports")
	depsCmd.Flags().BoolVar(&depsOrphans, "orphans", false, "List every file with no imports and no importers")
	depsCmd.Flags().BoolVar(&depsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(depsPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	if depsOrphans {
		orphans := query.Orphans(idx)
		return printStringList(orphans, depsJSON, "No orphaned files.")
	}

	if len(args) != 1 {
		return fmt.Errorf("a file path is required unless --orphans is set")
	}

	deps, err := query.Dependencies(idx, args[0], depsReverse)
	if err != nil {
		return err
	}
	return printStringList(deps, depsJSON, "No dependencies found.")
}

func printStringList(items []string, asJSON bool, emptyMsg string) error {
	if asJSON {
		data, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	if len(items) == 0 {
		fmt.Println(emptyMsg)
		return nil
	}
	for _, item := range items {
		fmt.Println(item)
	}
	return nil
}
