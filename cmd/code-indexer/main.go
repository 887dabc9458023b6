// cmd/code-indexer/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/metrics"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "code-indexer",
	Short: "Structural and semantic code indexing",
	Long:  `Builds and queries a per-project structural and semantic code index.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("code-indexer v0.1.0")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// metricsLogPath is the conventional operational-event log location for
// a project rooted at root, a sibling of PROJECT_INDEX.json.
func metricsLogPath(root string) string {
	return filepath.Join(root, ".context", ".project", "metrics.jsonl")
}

// openMetricsLogger opens (creating if absent) the metrics log for root.
// Commands log best-effort: a failure to open the log never blocks the
// command itself.
func openMetricsLogger(root string) (*metrics.Logger, error) {
	path := metricsLogPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return metrics.NewLogger(path)
}
