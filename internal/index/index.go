// Package index builds and incrementally updates a model.ProjectIndex:
// discovery, per-file hash+parse (parallelized across a bounded worker
// pool), and a single serial builder step that rebuilds the symbol index
// and dependency graph. This mirrors the teacher's batched-processing
// pipeline shape, generalized from RAG-chunk extraction to structural
// FileRecord construction.
package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/randalmurphal/code-indexer/internal/discover"
	"github.com/randalmurphal/code-indexer/internal/hash"
	"github.com/randalmurphal/code-indexer/internal/model"
	"github.com/randalmurphal/code-indexer/internal/resolve"
	"github.com/randalmurphal/code-indexer/internal/router"
)

// Builder composes discovery, routing, and parsing into a ProjectIndex.
type Builder struct {
	discoverer *discover.Discoverer
	router     *router.Router
	logger     *slog.Logger
	workers    int
}

// New constructs a Builder. workers <= 0 defaults to GOMAXPROCS.
func New(d *discover.Discoverer, r *router.Router, logger *slog.Logger, workers int) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{discoverer: d, router: r, logger: logger, workers: workers}
}

// Result summarizes a build or incremental update.
type Result struct {
	FilesIndexed int
	FilesSkipped int
	Errors       []error
}

type parsedFile struct {
	path    string
	record  model.FileRecord
	skipped bool
	err     error
}

// Build performs a full build over root, preserving created_at from
// existing if non-nil.
func (b *Builder) Build(root string, existing *model.ProjectIndex) (*model.ProjectIndex, *Result, error) {
	files, err := b.discoverer.Discover(root)
	if err != nil {
		return nil, nil, err
	}

	var createdAt time.Time
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	idx := model.NewProjectIndex(root, createdAt, time.Now())

	parsed, result := b.parseAll(root, files)
	for _, pf := range parsed {
		if pf.skipped {
			continue
		}
		idx.Files[pf.path] = pf.record
	}

	rebuildSymbolIndex(idx)
	rebuildDependencyGraph(idx)

	return idx, result, nil
}

// Update re-parses the subset of paths, dropping entries for files that
// no longer exist, then rebuilds symbol_index and dependency_graph from
// scratch over the current files (the simplest correct policy, per
// spec.md §4.6, deliberate despite its linear cost).
func (b *Builder) Update(root string, idx *model.ProjectIndex, paths []string) (*Result, error) {
	result := &Result{}

	var toParse []discover.FileInfo
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		info, err := os.Stat(full)
		if err != nil {
			if os.IsNotExist(err) {
				delete(idx.Files, p)
				continue
			}
			result.Errors = append(result.Errors, err)
			continue
		}
		toParse = append(toParse, discover.FileInfo{Path: p, SizeBytes: info.Size()})
	}

	parsed, partial := b.parseAll(root, toParse)
	result.Errors = append(result.Errors, partial.Errors...)
	result.FilesSkipped += partial.FilesSkipped
	for _, pf := range parsed {
		if pf.skipped {
			continue
		}
		idx.Files[pf.path] = pf.record
		result.FilesIndexed++
	}

	rebuildSymbolIndex(idx)
	rebuildDependencyGraph(idx)
	idx.UpdatedAt = time.Now()

	return result, nil
}

// parseAll reads, hashes, and parses files across a bounded worker pool,
// feeding results back for the caller to apply serially — the only
// shared mutation point (ProjectIndex.Files) stays single-threaded.
func (b *Builder) parseAll(root string, files []discover.FileInfo) ([]parsedFile, *Result) {
	result := &Result{}
	out := make([]parsedFile, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = b.parseOne(root, files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, pf := range out {
		if pf.err != nil {
			b.logger.Warn("skipping file", "path", pf.path, "error", pf.err)
			result.Errors = append(result.Errors, pf.err)
			result.FilesSkipped++
			continue
		}
		result.FilesIndexed++
	}
	return out, result
}

func (b *Builder) parseOne(root string, fi discover.FileInfo) parsedFile {
	full := filepath.Join(root, filepath.FromSlash(fi.Path))
	content, err := os.ReadFile(full)
	if err != nil {
		return parsedFile{path: fi.Path, skipped: true, err: err}
	}

	contentHash := hash.Content(content)
	adapter, lang, ok := b.router.Route(fi.Path)

	record := model.FileRecord{
		Path:          fi.Path,
		Language:      lang,
		SizeBytes:     fi.SizeBytes,
		ContentHash:   contentHash,
		LastIndexedAt: time.Now(),
	}

	if !ok {
		return parsedFile{path: fi.Path, record: record}
	}

	result, err := adapter.Parse(content, fi.Path)
	if err != nil {
		b.logger.Warn("parse failure", "path", fi.Path, "error", err)
		return parsedFile{path: fi.Path, record: record}
	}

	record.Imports = result.Imports
	record.Exports = result.Exports
	record.Symbols = result.Symbols
	record.Outline = result.Outline
	record.UIComponents = result.UIComponents
	record.APIEndpoints = result.APIEndpoints
	return parsedFile{path: fi.Path, record: record}
}

// rebuildSymbolIndex performs a depth-first walk of every file's symbol
// tree, inserting each node at dot_join(ancestors, name). Later entries
// overwrite duplicate keys; order follows file iteration order.
func rebuildSymbolIndex(idx *model.ProjectIndex) {
	idx.SymbolIndex = make(map[string]string)

	paths := sortedFilePaths(idx)
	for _, path := range paths {
		rec := idx.Files[path]
		var walk func(nodes []model.SymbolNode, prefix string)
		walk = func(nodes []model.SymbolNode, prefix string) {
			for _, n := range nodes {
				key := n.Name
				if prefix != "" {
					key = prefix + "." + n.Name
				}
				idx.SymbolIndex[key] = path + ":" + strconv.Itoa(n.Line)
				if len(n.Children) > 0 {
					walk(n.Children, key)
				}
			}
		}
		walk(rec.Symbols, "")
	}
}

// rebuildDependencyGraph resolves each file's imports; resolved paths are
// pushed into imports(file) and reciprocally into imported_by(resolved).
// Unresolved specifiers are pushed into imports(file) unchanged.
func rebuildDependencyGraph(idx *model.ProjectIndex) {
	graph := make(map[string]model.DependencyEntry, len(idx.Files))
	paths := sortedFilePaths(idx)
	for _, p := range paths {
		graph[p] = model.DependencyEntry{}
	}

	exists := func(p string) bool {
		_, ok := idx.Files[p]
		return ok
	}

	for _, path := range paths {
		rec := idx.Files[path]
		entry := graph[path]
		for _, im := range rec.Imports {
			resolved, ok := resolve.Resolve(im.Module, path, exists)
			entry.Imports = append(entry.Imports, resolved)
			if ok {
				target := graph[resolved]
				target.ImportedBy = append(target.ImportedBy, path)
				graph[resolved] = target
			}
		}
		graph[path] = entry
	}

	idx.DependencyGraph = graph
}

func sortedFilePaths(idx *model.ProjectIndex) []string {
	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
