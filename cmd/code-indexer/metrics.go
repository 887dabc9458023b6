package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/metrics"
	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [path]",
	Short: "Summarize operational metrics",
	Long:  `Analyze the index/search/reload metrics log for a project.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMetrics,
}

var (
	metricsSince       string
	metricsZeroResults bool
	metricsJSON        bool
)

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "last", "7d", "Time period (e.g., 1h, 24h, 7d, 30d)")
	metricsCmd.Flags().BoolVar(&metricsZeroResults, "zero-results", false, "Show only zero-result queries")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	duration, err := parseDuration(metricsSince)
	if err != nil {
		return fmt.Errorf("invalid time period: %w", err)
	}

	metricsPath := metricsLogPath(absPath)
	analyzer := metrics.NewAnalyzer(metricsPath)

	if metricsZeroResults {
		queries, err := analyzer.GetZeroResultQueries(duration)
		if err != nil {
			fmt.Println("No metrics data found yet.")
			return nil
		}

		if metricsJSON {
			data, _ := json.MarshalIndent(queries, "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Printf("Zero-result queries (last %s):\n\n", metricsSince)
			if len(queries) == 0 {
				fmt.Println("  No zero-result queries found.")
			}
			for _, q := range queries {
				fmt.Printf("  - \"%s\" (%d times)\n", q.Query, q.Count)
			}
		}
		return nil
	}

	summary, err := analyzer.Analyze(duration)
	if err != nil {
		fmt.Println("No metrics data found yet.")
		return nil
	}

	if metricsJSON {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Metrics Summary (last %s):\n\n", metricsSince)
		fmt.Printf("  Total searches:      %d\n", summary.TotalSearches)
		fmt.Printf("  Avg latency:         %dms\n", summary.AvgLatencyMs)
		fmt.Printf("  Index runs:          %d\n", summary.IndexRuns)
		fmt.Printf("  Reload runs:         %d\n", summary.ReloadCount)
		fmt.Printf("  Zero-result queries: %d\n", summary.ZeroResultCount)
		fmt.Println()
		if len(summary.SearchesByType) > 0 {
			fmt.Println("  Searches by type:")
			for t, c := range summary.SearchesByType {
				fmt.Printf("    - %s: %d\n", t, c)
			}
			fmt.Println()
		}
		if len(summary.TopQueries) > 0 {
			fmt.Println("  Top queries:")
			for _, q := range summary.TopQueries {
				fmt.Printf("    - \"%s\" (%d times)\n", q.Query, q.Count)
			}
		}
	}

	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if len(s) > 0 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		var d int
		if _, err := fmt.Sscanf(days, "%d", &d); err == nil {
			return time.Duration(d) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
