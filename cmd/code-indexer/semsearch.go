// cmd/code-indexer/semsearch.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/randalmurphal/code-indexer/internal/embed"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/semcache"
	"github.com/spf13/cobra"
)

var semsearchCmd = &cobra.Command{
	Use:   "semsearch [query]",
	Short: "Semantic search over the embedded symbol cache",
	Long:  `Embeds every symbol_index entry (building or reusing the on-disk cache as needed) and ranks them against the query by cosine similarity.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSemsearch,
}

var (
	semsearchPath  string
	semsearchK     int
	semsearchModel string
	semsearchJSON  bool
)

func init() {
	semsearchCmd.Flags().StringVar(&semsearchPath, "path", ".", "Project path")
	semsearchCmd.Flags().IntVar(&semsearchK, "k", 20, "Number of results to return")
	semsearchCmd.Flags().StringVar(&semsearchModel, "model", "local-trigram-256", "Embedding model")
	semsearchCmd.Flags().BoolVar(&semsearchJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(semsearchCmd)
}

func runSemsearch(cmd *cobra.Command, args []string) error {
	q := args[0]

	absPath, err := filepath.Abs(semsearchPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	provider := embed.NewLocalProvider(semsearchModel)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cachePath := semcache.Path(absPath)
	cache, err := loadOrBuildSemCache(ctx, cachePath, provider, idx)
	if err != nil {
		return fmt.Errorf("prepare semantic cache: %w", err)
	}

	start := time.Now()
	matches, err := cache.Search(ctx, provider, q, semsearchK)
	if err != nil {
		return fmt.Errorf("semantic search failed: %w", err)
	}

	if mlog, mErr := openMetricsLogger(absPath); mErr == nil {
		mlog.LogSemSearch(q, semsearchK, len(matches), time.Since(start).Milliseconds())
		mlog.Close()
	}

	if semsearchJSON {
		data, _ := json.MarshalIndent(matches, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(matches) == 0 {
		fmt.Printf("No semantic matches for %q.\n", q)
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%.4f\t%s:%d\n", m.Score, m.File, m.Line)
	}
	return nil
}

// loadOrBuildSemCache loads the on-disk cache and reuses it if it already
// matches provider's model and idx's current symbols, rebuilding and
// persisting it otherwise.
func loadOrBuildSemCache(ctx context.Context, cachePath string, provider *embed.LocalProvider, idx *model.ProjectIndex) (*semcache.Cache, error) {
	cache, err := semcache.Load(cachePath)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromSymbolIndex(idx)
	if cache.Reusable(provider.Model(), sources) {
		return cache, nil
	}

	rebuilt, err := semcache.Rebuild(ctx, provider, sources)
	if err != nil {
		return nil, err
	}
	if err := rebuilt.Save(cachePath); err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// sourcesFromSymbolIndex flattens a loaded index's symbol_index ("name" ->
// "file:line") into semantic-cache sources, one per qualified symbol.
func sourcesFromSymbolIndex(idx *model.ProjectIndex) []semcache.Source {
	var sources []semcache.Source
	for name, loc := range idx.SymbolIndex {
		line := 0
		file := loc
		for i := len(loc) - 1; i >= 0; i-- {
			if loc[i] == ':' {
				file = loc[:i]
				fmt.Sscanf(loc[i+1:], "%d", &line)
				break
			}
		}
		sources = append(sources, semcache.Source{File: file, Line: line, Text: name})
	}
	return sources
}
