// cmd/code-indexer/init.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Scaffold a .code-index.yaml file-discovery config",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", absPath)
	}

	configPath := filepath.Join(absPath, ".code-index.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		return nil
	}

	cfg := config.DefaultRepoConfig(absPath)
	cfg.IncludePatterns = detectIncludes(absPath)
	cfg.ExcludePatterns = []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Review and customize the config file\n")
	fmt.Printf("  2. Run: code-indexer index %s\n", absPath)

	return nil
}

func detectIncludes(repoPath string) []string {
	var includes []string

	if hasFiles(repoPath, "*.py") {
		includes = append(includes, "**/*.py")
	}
	if hasFiles(repoPath, "*.go") {
		includes = append(includes, "**/*.go")
	}
	if hasFiles(repoPath, "*.rs") {
		includes = append(includes, "**/*.rs")
	}
	if hasFiles(repoPath, "*.js") || hasFiles(repoPath, "*.ts") {
		includes = append(includes, "**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx")
	}
	if hasFiles(repoPath, "*.sh") {
		includes = append(includes, "**/*.sh", "**/*.bash")
	}

	if len(includes) == 0 {
		includes = []string{"**/*.py", "**/*.go", "**/*.rs", "**/*.js", "**/*.ts", "**/*.sh"}
	}

	return includes
}

func hasFiles(dir, pattern string) bool {
	matches, _ := filepath.Glob(filepath.Join(dir, pattern))
	if len(matches) > 0 {
		return true
	}
	matches, _ = filepath.Glob(filepath.Join(dir, "*", pattern))
	return len(matches) > 0
}
