// internal/config/config.go
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds global, machine-wide configuration: the embedding model,
// the resident server's bind address, logging, and the optional
// domain-stack mirror URLs (empty disables each mirror).
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig names the local embedding provider's model identifier.
// There is no API key or provider selector: the provider is always local.
type EmbeddingConfig struct {
	Model string `yaml:"model"` // e.g. "local-trigram-256"
}

// ServerConfig is the Resident Server's bind address, overridable by the
// PROJECT_INDEX_HOST/PROJECT_INDEX_PORT environment variables.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig names the optional domain-stack mirrors. Each is disabled
// by leaving its URL empty; the on-disk index and semantic cache remain
// authoritative regardless.
type StorageConfig struct {
	QdrantURL string `yaml:"qdrant_url"`
	Neo4jURL  string `yaml:"neo4j_url"`
	RedisURL  string `yaml:"redis_url"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"` // error|warn|info|debug
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// RepoConfig holds per-project file-discovery configuration, loaded from
// a config file at the project root (see LoadRepoConfig).
type RepoConfig struct {
	Name            string   `yaml:"name"`
	ProjectRoot     string   `yaml:"project_root"`
	IndexFile       string   `yaml:"index_file"`
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxFileSize     int64    `yaml:"max_file_size"`
	Languages       []string `yaml:"languages"`
}

// DefaultIndexFile is the index document's path relative to project_root,
// matching model.IndexRelPath.
const DefaultIndexFile = ".context/.project/PROJECT_INDEX.json"

// DefaultConfig returns sensible global defaults.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model: "local-trigram-256",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7420,
		},
		Storage: StorageConfig{},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 50,
			MaxFiles:  3,
		},
	}
}

// LoadConfig loads the global config from file or returns defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultRepoConfig returns file-discovery defaults for a project rooted
// at root, used when no .code-index.yaml exists yet.
func DefaultRepoConfig(root string) *RepoConfig {
	return &RepoConfig{
		Name:        filepath.Base(root),
		ProjectRoot: root,
		IndexFile:   DefaultIndexFile,
		MaxFileSize: 1 << 20,
		Languages:   []string{"typescript", "javascript", "python", "go", "rust", "shell"},
	}
}

// LoadRepoConfig loads .code-index.yaml from a project root. If the file
// is absent, it returns DefaultRepoConfig(repoPath) rather than an error,
// since running without a config is a supported first-run path.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	path := filepath.Join(repoPath, ".code-index.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRepoConfig(repoPath), nil
		}
		return nil, err
	}

	cfg := DefaultRepoConfig(repoPath)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.ProjectRoot = repoPath
	return cfg, nil
}
