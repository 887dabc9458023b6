// cmd/code-indexer/impact.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/spf13/cobra"
)

var impactCmd = &cobra.Command{
	Use:   "impact [file]",
	Short: "Show files transitively affected by a change to the target",
	Args:  cobra.ExactArgs(1),
	RunE:  runImpact,
}

var (
	impactPath  string
	impactDepth int
	impactJSON  bool
)

func init() {
	impactCmd.Flags().StringVar(&impactPath, "path", ".", "Project path")
	impactCmd.Flags().IntVar(&impactDepth, "depth", 3, "Maximum hops to expand through imported_by")
	impactCmd.Flags().BoolVar(&impactJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(impactPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	impact := query.ImpactOf(idx, args[0], impactDepth)

	if impactJSON {
		data, _ := json.MarshalIndent(impact, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printBucket := func(label string, files []string) {
		if len(files) == 0 {
			return
		}
		fmt.Printf("%s:\n", label)
		for _, f := range files {
			fmt.Printf("  - %s\n", f)
		}
	}
	printBucket("High", impact.High)
	printBucket("Medium", impact.Medium)
	printBucket("Low", impact.Low)
	printBucket("Tests", impact.Tests)
	if len(impact.High)+len(impact.Medium)+len(impact.Low)+len(impact.Tests) == 0 {
		fmt.Println("No impacted files found.")
	}
	return nil
}
