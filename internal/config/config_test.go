package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "local-trigram-256", cfg.Embedding.Model)
	require.Equal(t, 7420, cfg.Server.Port)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 0.0.0.0
  port: 9000
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "local-trigram-256", cfg.Embedding.Model)
}

func TestLoadRepoConfigMissingFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadRepoConfig(root)
	require.NoError(t, err)
	require.Equal(t, root, cfg.ProjectRoot)
	require.Equal(t, DefaultIndexFile, cfg.IndexFile)
	require.Contains(t, cfg.Languages, "go")
}

func TestLoadRepoConfigReadsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".code-index.yaml"), []byte(`
name: myproject
include_patterns:
  - "**/*.go"
exclude_patterns:
  - "**/testdata/**"
max_file_size: 2097152
`), 0o644))

	cfg, err := LoadRepoConfig(root)
	require.NoError(t, err)
	require.Equal(t, "myproject", cfg.Name)
	require.Equal(t, []string{"**/*.go"}, cfg.IncludePatterns)
	require.Equal(t, []string{"**/testdata/**"}, cfg.ExcludePatterns)
	require.EqualValues(t, 2097152, cfg.MaxFileSize)
	require.Equal(t, root, cfg.ProjectRoot)
}
