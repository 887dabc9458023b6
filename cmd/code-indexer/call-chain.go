// cmd/code-indexer/call-chain.go
package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/callgraph"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/spf13/cobra"
)

var callChainCmd = &cobra.Command{
	Use:   "call-chain [from] [to]",
	Short: "Find a call path from one symbol to another",
	Args:  cobra.ExactArgs(2),
	RunE:  runCallChain,
}

var (
	callChainPath  string
	callChainDepth int
	callChainJSON  bool
)

func init() {
	callChainCmd.Flags().StringVar(&callChainPath, "path", ".", "Project path")
	callChainCmd.Flags().IntVar(&callChainDepth, "depth", 10, "Maximum hops to search")
	callChainCmd.Flags().BoolVar(&callChainJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(callChainCmd)
}

func runCallChain(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(callChainPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	idx, err := model.LoadProjectIndex(model.IndexRelPathFor(absPath))
	if err != nil {
		return fmt.Errorf("no index found at %s: %w", absPath, err)
	}

	graph := callgraph.Build(idx)
	chain, found := graph.Chain(args[0], args[1], callChainDepth)

	if callChainJSON {
		out := struct {
			Found bool     `json:"found"`
			Chain []string `json:"chain,omitempty"`
		}{Found: found, Chain: chain}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if !found {
		fmt.Printf("No call chain found from %s to %s within %d hops.\n", args[0], args[1], callChainDepth)
		return nil
	}
	fmt.Println(joinArrow(chain))
	return nil
}

func joinArrow(chain []string) string {
	out := ""
	for i, name := range chain {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return out
}
