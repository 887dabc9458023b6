// cmd/code-indexer/suggest.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [context]",
	Short: "Suggest symbols related to a free-text context",
	Long: `Ranks every symbol_index entry against the context string: substring
hits, overlapping words, and category-synonym hits (e.g. "auth" also
surfaces "login"/"session"/"token"). Returns the top 3 as primary and up
to 5 more as related.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

var (
	suggestPath string
	suggestJSON bool
)

func init() {
	suggestCmd.Flags().StringVar(&suggestPath, "path", ".", "Project path")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	context := args[0]

	absPath, err := filepath.Abs(suggestPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	primary, related := query.Suggest(idx, context)

	if suggestJSON {
		out := struct {
			Primary []query.Suggestion `json:"primary"`
			Related []query.Suggestion `json:"related"`
		}{Primary: primary, Related: related}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(primary) == 0 && len(related) == 0 {
		fmt.Printf("No suggestions for %q.\n", context)
		return nil
	}

	fmt.Println("Primary:")
	for _, s := range primary {
		fmt.Printf("  - %s (%s) confidence=%.2f\n", s.Name, s.Location, s.Confidence)
	}
	if len(related) > 0 {
		fmt.Println("Related:")
		for _, s := range related {
			fmt.Printf("  - %s (%s) confidence=%.2f\n", s.Name, s.Location, s.Confidence)
		}
	}
	return nil
}
