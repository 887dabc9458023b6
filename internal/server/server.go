// Package server implements the Resident Server: an HTTP/JSON process
// that holds a project's index and semantic cache in memory and answers
// search, semantic search, and reload requests without re-parsing the
// tree on every call.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/code-indexer/internal/backend/graphmirror"
	"github.com/randalmurphal/code-indexer/internal/backend/sharedcache"
	"github.com/randalmurphal/code-indexer/internal/backend/vectormirror"
	"github.com/randalmurphal/code-indexer/internal/embed"
	"github.com/randalmurphal/code-indexer/internal/index"
	"github.com/randalmurphal/code-indexer/internal/metrics"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/query"
	"github.com/randalmurphal/code-indexer/internal/semcache"
)

// state is the Resident Server's lifecycle state.
type state int32

const (
	stateUninitialized state = iota
	stateReady
	stateReloading
)

// snapshot is the index + semantic cache pair served by reads. Reloads
// build a fresh snapshot and swap the pointer in atomically; in-flight
// reads keep using whatever snapshot they already loaded, so reloading
// never blocks search/semsearch.
type snapshot struct {
	idx   *model.ProjectIndex
	cache *semcache.Cache
}

// Server holds one project's in-memory index and semantic cache and
// serves them over HTTP. All writes to the snapshot pointer are
// serialized under mu; reads take a fresh pointer load and never block
// on a concurrent reload.
type Server struct {
	root     string
	builder  *index.Builder
	provider *embed.LocalProvider
	logger   *slog.Logger
	metrics  *metrics.Logger

	mu    sync.Mutex
	snap  atomic.Pointer[snapshot]
	state atomic.Int32

	// Optional domain-stack mirrors, nil unless SetMirrors is called.
	// Their absence never changes required behavior: every mirror write
	// and read is best-effort and falls back to the in-process snapshot.
	shared       *sharedcache.Cache
	vectorMirror *vectormirror.Mirror
	graphMirror  *graphmirror.Mirror
}

// New constructs a Server rooted at root. builder is the same
// discovery/routing/parsing pipeline used by the CLI, so the resident
// server and a one-shot CLI invocation build identical indexes.
func New(root string, builder *index.Builder, provider *embed.LocalProvider, logger *slog.Logger, mlog *metrics.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		root:     root,
		builder:  builder,
		provider: provider,
		logger:   logger,
		metrics:  mlog,
	}
	s.state.Store(int32(stateUninitialized))
	return s
}

// SetMirrors attaches the optional domain-stack mirrors. Any argument may
// be nil to leave that mirror disabled; callers construct each mirror
// from its own config URL and skip the ones left unconfigured.
func (s *Server) SetMirrors(shared *sharedcache.Cache, vm *vectormirror.Mirror, gm *graphmirror.Mirror) {
	s.shared = shared
	s.vectorMirror = vm
	s.graphMirror = gm
}

// Init loads (or builds, if absent) the persisted index and semantic
// cache, entering the ready state.
func (s *Server) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadOrBuildIndex()
	if err != nil {
		return fmt.Errorf("initialize index: %w", err)
	}

	cache, err := s.loadOrBuildCache(ctx, idx)
	if err != nil {
		return fmt.Errorf("initialize semantic cache: %w", err)
	}

	s.snap.Store(&snapshot{idx: idx, cache: cache})
	s.state.Store(int32(stateReady))
	s.mirrorAll(ctx, idx, cache)
	s.logger.Info("resident server ready", "root", s.root, "files", len(idx.Files), "vectors", cache.Len())
	return nil
}

// mirrorAll best-effort pushes the current snapshot into whichever
// optional mirrors are configured. A mirror error is logged and
// swallowed: the in-process snapshot remains authoritative regardless.
func (s *Server) mirrorAll(ctx context.Context, idx *model.ProjectIndex, cache *semcache.Cache) {
	if s.vectorMirror != nil {
		if err := s.mirrorVectors(ctx, cache); err != nil {
			s.logger.Warn("vector mirror sync failed", "err", err)
		}
	}
	if s.graphMirror != nil {
		if err := s.mirrorGraph(ctx, idx); err != nil {
			s.logger.Warn("graph mirror sync failed", "err", err)
		}
	}
}

// mirrorVectors pushes every cache entry into the configured ANN mirror
// so semantic search can optionally be served by it instead of the
// brute-force in-process cosine scan.
func (s *Server) mirrorVectors(ctx context.Context, cache *semcache.Cache) error {
	entries := cache.Entries()
	if len(entries) == 0 {
		return nil
	}
	if err := s.vectorMirror.EnsureCollection(ctx, len(entries[0].Vec)); err != nil {
		return err
	}
	upsert := make([]vectormirror.Entry, len(entries))
	for i, e := range entries {
		upsert[i] = vectormirror.Entry{ID: e.ID, File: e.File, Line: e.Line, Text: e.Text, Vec: e.Vec}
	}
	return s.vectorMirror.Upsert(ctx, upsert)
}

// mirrorGraph replaces the project's file/symbol/call-edge mirror in the
// configured graph database. The server's own routes never read from
// the graph mirror.
func (s *Server) mirrorGraph(ctx context.Context, idx *model.ProjectIndex) error {
	if err := s.graphMirror.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := s.graphMirror.ReplaceProject(ctx); err != nil {
		return err
	}

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		rec := idx.Files[path]
		if err := s.graphMirror.UpsertFile(ctx, graphmirror.File{Path: path, Hash: rec.ContentHash}); err != nil {
			return err
		}
		var walk func(nodes []model.SymbolNode)
		walk = func(nodes []model.SymbolNode) {
			for _, n := range nodes {
				_ = s.graphMirror.UpsertSymbol(ctx, graphmirror.Symbol{Name: n.Name, Kind: string(n.Kind), FilePath: path, StartLine: n.Line})
				for _, callee := range n.Calls {
					_ = s.graphMirror.LinkCall(ctx, path, n.Line, callee)
				}
				walk(n.Children)
			}
		}
		walk(rec.Symbols)
	}
	for path, entry := range idx.DependencyGraph {
		for _, imp := range entry.Imports {
			if err := s.graphMirror.LinkImport(ctx, path, imp); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) loadOrBuildIndex() (*model.ProjectIndex, error) {
	path := model.IndexRelPathFor(s.root)
	existing, err := model.LoadProjectIndex(path)
	if err != nil {
		existing = nil
	}

	start := time.Now()
	idx, result, err := s.builder.Build(s.root, existing)
	if err != nil {
		return nil, err
	}
	if err := model.SaveProjectIndex(path, idx); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.LogIndex(result.FilesIndexed, result.FilesSkipped, existing != nil, time.Since(start).Milliseconds())
	}
	return idx, nil
}

func (s *Server) loadOrBuildCache(ctx context.Context, idx *model.ProjectIndex) (*semcache.Cache, error) {
	cachePath := semcache.Path(s.root)
	cache, err := semcache.Load(cachePath)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromIndex(idx)
	if cache.Reusable(s.provider.Model(), sources) {
		return cache, nil
	}

	rebuilt, err := semcache.Rebuild(ctx, s.provider, sources)
	if err != nil {
		return nil, err
	}
	if err := rebuilt.Save(cachePath); err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// sourcesFromIndex flattens every symbol in idx into semantic-cache
// sources, one per qualified symbol.
func sourcesFromIndex(idx *model.ProjectIndex) []semcache.Source {
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

// Reload rebuilds the index and semantic cache from disk and swaps them
// in atomically. Concurrent reads continue serving the previous
// snapshot until the swap completes.
func (s *Server) Reload(ctx context.Context) (files, vectors int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Store(int32(stateReloading))
	defer s.state.Store(int32(stateReady))

	start := time.Now()
	idx, err := s.loadOrBuildIndex()
	if err != nil {
		return 0, 0, err
	}
	cache, err := s.loadOrBuildCache(ctx, idx)
	if err != nil {
		return 0, 0, err
	}

	s.snap.Store(&snapshot{idx: idx, cache: cache})
	s.mirrorAll(ctx, idx, cache)
	s.invalidateShared(ctx)

	files = len(idx.Files)
	vectors = cache.Len()
	if s.metrics != nil {
		s.metrics.LogReload(files, vectors, time.Since(start).Milliseconds())
	}
	s.logger.Info("reload complete", "files", files, "vectors", vectors)
	return files, vectors, nil
}

// invalidateShared bumps the project's shared index version and clears
// its cached search results, so other Resident Server instances sharing
// the same Redis know their snapshot and any cached results are stale.
func (s *Server) invalidateShared(ctx context.Context) {
	if s.shared == nil {
		return
	}
	if _, err := s.shared.BumpVersion(ctx, s.root); err != nil {
		s.logger.Warn("shared cache version bump failed", "err", err)
		return
	}
	if err := s.shared.Invalidate(ctx, s.root); err != nil {
		s.logger.Warn("shared cache invalidate failed", "err", err)
	}
}

func (s *Server) current() *snapshot {
	return s.snap.Load()
}

// Handler returns the HTTP handler implementing §6's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/semsearch", s.handleSemSearch)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type searchRequest struct {
	Query string `json:"query"`
	Exact bool   `json:"exact"`
}

type searchResult struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "query required"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "query required"})
		return
	}

	snap := s.current()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "No index found"})
		return
	}

	hits := query.Search(snap.idx, req.Query, req.Exact)
	results := make([]searchResult, len(hits))
	for i, h := range hits {
		results[i] = searchResult{Name: h.Name, Location: h.Location}
	}

	if s.metrics != nil {
		s.metrics.LogSearch(req.Query, "search", len(results), time.Since(start).Milliseconds())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"query": req.Query, "results": results})
}

type semSearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Model string `json:"model"`
}

type semSearchResult struct {
	ID    string  `json:"id"`
	File  string  `json:"file"`
	Line  int     `json:"line,omitempty"`
	Score float64 `json:"score"`
}

func (s *Server) handleSemSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req semSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}

	snap := s.current()
	if snap == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "no index loaded"})
		return
	}

	var results []semSearchResult
	if s.vectorMirror != nil {
		mirrored, err := s.searchMirror(r.Context(), req.Query, req.K)
		if err != nil {
			s.logger.Warn("vector mirror search failed, falling back to local cache", "err", err)
		} else {
			results = mirrored
		}
	}

	if results == nil {
		cache := snap.cache
		if cache == nil || cache.Len() == 0 {
			built, err := s.loadOrBuildCache(r.Context(), snap.idx)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
				return
			}
			cache = built
		}

		matches, err := cache.Search(r.Context(), s.provider, req.Query, req.K)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
			return
		}
		results = make([]semSearchResult, len(matches))
		for i, m := range matches {
			results[i] = semSearchResult{ID: m.ID, File: m.File, Line: m.Line, Score: m.Score}
		}
	}

	if s.metrics != nil {
		s.metrics.LogSemSearch(req.Query, req.K, len(results), time.Since(start).Milliseconds())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"query": req.Query, "results": results})
}

// searchMirror embeds query locally and delegates the nearest-neighbor
// search itself to the configured ANN mirror. Mirror results carry no
// symbol id, so one is synthesized as "file:line" to keep the response
// shape consistent with the local-cache path.
func (s *Server) searchMirror(ctx context.Context, q string, k int) ([]semSearchResult, error) {
	if k <= 0 {
		k = 20
	}
	vectors, err := s.provider.Embed(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	matches, err := s.vectorMirror.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, err
	}
	out := make([]semSearchResult, len(matches))
	for i, m := range matches {
		out[i] = semSearchResult{ID: fmt.Sprintf("%s:%d", m.File, m.Line), File: m.File, Line: m.Line, Score: m.Score}
	}
	return out, nil
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	files, vectors, err := s.Reload(r.Context())
	if err != nil {
		if s.metrics != nil {
			s.metrics.LogError("reload", err.Error())
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"files":   files,
		"vectors": vectors,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not found"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
