// cmd/code-index-server/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/randalmurphal/code-indexer/internal/backend/graphmirror"
	"github.com/randalmurphal/code-indexer/internal/backend/sharedcache"
	"github.com/randalmurphal/code-indexer/internal/backend/vectormirror"
	"github.com/randalmurphal/code-indexer/internal/config"
	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/embed"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/metrics"
	"github.com/randalmurphal/code-indexer/internal/router"
	"github.com/randalmurphal/code-indexer/internal/server"
	"github.com/spf13/cobra"
)

const (
	serverName    = "code-index-server"
	serverVersion = "0.1.0"
)

var (
	hostFlag string
	portFlag int
)

var rootCmd = &cobra.Command{
	Use:   "code-index-server [path]",
	Short: "Resident HTTP server for semantic code search",
	Long:  `Starts the Resident Server, holding a project's index and semantic cache in memory and answering search/semsearch/reload over HTTP.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	rootCmd.Flags().StringVar(&hostFlag, "host", "", "bind host (defaults to PROJECT_INDEX_HOST or config)")
	rootCmd.Flags().IntVar(&portFlag, "port", 0, "bind port (defaults to PROJECT_INDEX_PORT or config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}

	logger, cleanup, err := setupLogging()
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()

	cfg := config.DefaultConfig()
	repoCfg, err := config.LoadRepoConfig(absRoot)
	if err != nil {
		return fmt.Errorf("load repo config: %w", err)
	}

	host := resolveHost(cfg)
	port := resolvePort(cfg)

	logger.Info("starting resident server", "name", serverName, "version", serverVersion, "root", absRoot)

	mlog, err := metrics.NewLogger(filepath.Join(absRoot, ".context", ".project", "metrics.jsonl"))
	if err != nil {
		return fmt.Errorf("open metrics log: %w", err)
	}
	defer mlog.Close()

	d := discover.New(repoCfg.IncludePatterns, repoCfg.ExcludePatterns, repoCfg.MaxFileSize)
	r := router.New()
	builder := index.New(d, r, logger, 0)
	provider := embed.NewLocalProvider(cfg.Embedding.Model)

	srv := server.New(absRoot, builder, provider, logger, mlog)
	srv.SetMirrors(connectSharedCache(cfg, logger), connectVectorMirror(cfg, logger), connectGraphMirror(cfg, logger, absRoot))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Init(ctx); err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: srv.Handler(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		httpServer.Shutdown(context.Background())
	}()

	logger.Info("listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// connectSharedCache dials Redis when cfg.Storage.RedisURL is set,
// logging and disabling the mirror on failure rather than failing
// startup: the shared cache only coordinates multi-instance invalidation.
func connectSharedCache(cfg *config.Config, logger *slog.Logger) *sharedcache.Cache {
	if cfg.Storage.RedisURL == "" {
		return nil
	}
	c, err := sharedcache.New(cfg.Storage.RedisURL)
	if err != nil {
		logger.Warn("shared cache disabled, could not connect", "err", err)
		return nil
	}
	return c
}

// connectVectorMirror dials Qdrant when cfg.Storage.QdrantURL is set.
func connectVectorMirror(cfg *config.Config, logger *slog.Logger) *vectormirror.Mirror {
	if cfg.Storage.QdrantURL == "" {
		return nil
	}
	m, err := vectormirror.New(cfg.Storage.QdrantURL, "code_index_vectors")
	if err != nil {
		logger.Warn("vector mirror disabled, could not connect", "err", err)
		return nil
	}
	return m
}

// connectGraphMirror dials Neo4j when cfg.Storage.Neo4jURL is set, using
// NEO4J_USER/NEO4J_PASSWORD for credentials.
func connectGraphMirror(cfg *config.Config, logger *slog.Logger, absRoot string) *graphmirror.Mirror {
	if cfg.Storage.Neo4jURL == "" {
		return nil
	}
	m, err := graphmirror.New(cfg.Storage.Neo4jURL, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"), filepath.Base(absRoot))
	if err != nil {
		logger.Warn("graph mirror disabled, could not connect", "err", err)
		return nil
	}
	return m
}

func resolveHost(cfg *config.Config) string {
	if hostFlag != "" {
		return hostFlag
	}
	if v := os.Getenv("PROJECT_INDEX_HOST"); v != "" {
		return v
	}
	return cfg.Server.Host
}

func resolvePort(cfg *config.Config) int {
	if portFlag != 0 {
		return portFlag
	}
	if v := os.Getenv("PROJECT_INDEX_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			return p
		}
	}
	return cfg.Server.Port
}

func setupLogging() (*slog.Logger, func(), error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "/tmp"
	}
	logDir := filepath.Join(cacheDir, serverName)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(logDir, "server.log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	trace := os.Getenv("PROJECT_INDEX_TRACE")
	if trace != "" {
		logger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cleanup := func() {
		file.Close()
	}

	return logger, cleanup, nil
}
