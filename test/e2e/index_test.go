package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildCLI compiles the code-indexer binary once per test run and returns
// its path.
func buildCLI(t *testing.T) string {
	t.Helper()
	projectRoot := getProjectRoot()
	binPath := filepath.Join(t.TempDir(), "code-indexer")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/code-indexer")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", output)
	return binPath
}

func getProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

func run(t *testing.T, cli string, args ...string) string {
	t.Helper()
	cmd := exec.Command(cli, args...)
	cmd.Env = os.Environ()
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "%v failed: %s", args, output)
	return string(output)
}

// TestIndexEndToEnd walks scenarios A, D, and F against a small
// multi-file Go fixture repo: nested symbols, call chains, and
// incremental deletion.
func TestIndexEndToEnd(t *testing.T) {
	cli := buildCLI(t)
	repo := t.TempDir()

	const mainGo = `package main

func a() {
	b()
}

func b() {
	c()
}

func c() {}

type Greeter struct{}

func (g Greeter) Hello(name string) string {
	return "hello " + name
}

func (g Greeter) Bye() string {
	return "bye"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte(mainGo), 0644))

	const utilGo = `package main

import "fmt"

func helper() {
	fmt.Println("helper")
}
`
	require.NoError(t, os.WriteFile(filepath.Join(repo, "util.go"), []byte(utilGo), 0644))

	run(t, cli, "init", repo)
	_, err := os.Stat(filepath.Join(repo, ".code-index.yaml"))
	require.NoError(t, err, "config file should exist")

	run(t, cli, "index", repo)

	indexPath := filepath.Join(repo, ".context", ".project", "PROJECT_INDEX.json")
	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)

	var idx struct {
		Files       map[string]json.RawMessage `json:"files"`
		SymbolIndex map[string]string           `json:"symbol_index"`
	}
	require.NoError(t, json.Unmarshal(data, &idx))

	// Scenario A: nested symbols produce qualified keys.
	require.Contains(t, idx.SymbolIndex, "Greeter")
	require.Contains(t, idx.SymbolIndex, "Greeter.Hello")
	require.Contains(t, idx.SymbolIndex, "Greeter.Bye")

	// Scenario D: call chain a -> b -> c.
	chainOut := run(t, cli, "call-chain", "a", "c", "--path", repo, "--json")
	var chain struct {
		Found bool     `json:"found"`
		Chain []string `json:"chain"`
	}
	require.NoError(t, json.Unmarshal([]byte(chainOut), &chain))
	require.True(t, chain.Found)
	require.Equal(t, []string{"a", "b", "c"}, chain.Chain)

	noChainOut := run(t, cli, "call-chain", "a", "doesnotexist", "--path", repo, "--json")
	require.NoError(t, json.Unmarshal([]byte(noChainOut), &chain))
	require.False(t, chain.Found)

	// Scenario F: incremental deletion removes the file from every index.
	require.NoError(t, os.Remove(filepath.Join(repo, "util.go")))
	run(t, cli, "update", "util.go", "--path", repo)

	data, err = os.ReadFile(indexPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &idx))
	require.NotContains(t, idx.Files, "util.go")
}

// TestSemanticReuse exercises the reuse half of scenario E: rebuilding
// the semantic cache against an unchanged index and model is a no-op.
func TestSemanticReuse(t *testing.T) {
	cli := buildCLI(t)
	repo := t.TempDir()

	const src = `package main

func greet() string { return "hi" }
`
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte(src), 0644))

	run(t, cli, "index", repo)

	out := run(t, cli, "semsearch", "greet", "--path", repo, "--json")
	require.Contains(t, out, "greet")

	vectorsPath := filepath.Join(repo, ".context", ".project", "PROJECT_INDEX.vectors.jsonl")
	first, err := os.ReadFile(vectorsPath)
	require.NoError(t, err)

	// Re-running semsearch with the same model should not alter the cache.
	run(t, cli, "semsearch", "greet", "--path", repo)
	second, err := os.ReadFile(vectorsPath)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
