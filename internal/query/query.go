// Package query implements the read-only structural queries over a
// loaded model.ProjectIndex: Search, Dependencies, Orphans, Impact,
// Dead-code, and Suggest. All operations are pure functions of the index
// and deterministic given it.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/randalmurphal/code-indexer/internal/indexerrors"
	"github.com/randalmurphal/code-indexer/internal/model"
)

// Result is one (name, location) pair from symbol_index.
type Result struct {
	Name     string
	Location string
}

// Search filters symbol_index by substring (case-insensitive) or exact
// match, returned in name order for deterministic output.
func Search(idx *model.ProjectIndex, q string, exact bool) []Result {
	var out []Result
	needle := strings.ToLower(q)
	for name, loc := range idx.SymbolIndex {
		if exact {
			if name == q {
				out = append(out, Result{Name: name, Location: loc})
			}
			continue
		}
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, Result{Name: name, Location: loc})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dependencies returns imports (reverse=false) or imported_by (reverse=true)
// for a normalized path.
func Dependencies(idx *model.ProjectIndex, path string, reverse bool) ([]string, error) {
	norm := strings.TrimPrefix(path, "./")
	entry, ok := idx.DependencyGraph[norm]
	if !ok {
		return nil, indexerrors.Wrap(indexerrors.KindPathNotInGraph, "path not in dependency graph: "+norm, nil)
	}
	if reverse {
		return entry.ImportedBy, nil
	}
	return entry.Imports, nil
}

// Orphans returns every file with no imports and no importers.
func Orphans(idx *model.ProjectIndex) []string {
	var out []string
	for path, entry := range idx.DependencyGraph {
		if len(entry.Imports) == 0 && len(entry.ImportedBy) == 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Severity is an impact bucket: High (depth 1), Medium (depth 2), or Low
// (depth 3+).
type Severity int

const (
	High Severity = iota
	Medium
	Low
)

// Impact is the result of a BFS over imported_by starting at a target
// file, bucketed by depth with higher-severity-wins dedup, plus any
// test-shaped files related to the target or already in a bucket.
type Impact struct {
	High   []string
	Medium []string
	Low    []string
	Tests  []string
}

// ImpactOf BFS-expands imported_by from target up to maxDepth hops.
func ImpactOf(idx *model.ProjectIndex, target string, maxDepth int) Impact {
	norm := strings.TrimPrefix(target, "./")
	best := make(map[string]Severity)

	frontier := []string{norm}
	visited := map[string]bool{norm: true}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		sev := severityForDepth(depth)
		var next []string
		for _, path := range frontier {
			entry, ok := idx.DependencyGraph[path]
			if !ok {
				continue
			}
			for _, importer := range entry.ImportedBy {
				if cur, seen := best[importer]; !seen || sev < cur {
					best[importer] = sev
				}
				if !visited[importer] {
					visited[importer] = true
					next = append(next, importer)
				}
			}
		}
		frontier = next
	}

	impact := Impact{}
	for path, sev := range best {
		switch sev {
		case High:
			impact.High = append(impact.High, path)
		case Medium:
			impact.Medium = append(impact.Medium, path)
		default:
			impact.Low = append(impact.Low, path)
		}
	}
	sort.Strings(impact.High)
	sort.Strings(impact.Medium)
	sort.Strings(impact.Low)

	baseName := baseNameOf(norm)
	for path := range idx.DependencyGraph {
		if !isTestShaped(path) {
			continue
		}
		if baseNameOf(path) == baseName || best[path] != 0 || contains(impact.High, path) || contains(impact.Medium, path) || contains(impact.Low, path) {
			impact.Tests = append(impact.Tests, path)
		}
	}
	sort.Strings(impact.Tests)

	return impact
}

func severityForDepth(depth int) Severity {
	switch {
	case depth <= 1:
		return High
	case depth == 2:
		return Medium
	default:
		return Low
	}
}

func baseNameOf(path string) string {
	name := path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	for _, suffix := range []string{".test", ".spec"} {
		name = strings.Replace(name, suffix, "", 1)
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}

func isTestShaped(path string) bool {
	return strings.Contains(path, "/test/") || strings.Contains(path, ".test.") || strings.Contains(path, ".spec.")
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// DeadCode returns function/method symbols that never appear in any
// calls list. includePrivate controls whether names starting with "_"
// are included.
func DeadCode(idx *model.ProjectIndex, includePrivate bool) []Result {
	called := make(map[string]bool)
	declared := make(map[string]string) // name -> location

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		rec := idx.Files[path]
		var walk func(nodes []model.SymbolNode)
		walk = func(nodes []model.SymbolNode) {
			for _, n := range nodes {
				for _, c := range n.Calls {
					called[c] = true
				}
				if n.Kind == model.KindFunction || n.Kind == model.KindMethod {
					declared[n.Name] = path + ":" + strconv.Itoa(n.Line)
				}
				walk(n.Children)
			}
		}
		walk(rec.Symbols)
	}

	var out []Result
	for name, loc := range declared {
		if called[name] {
			continue
		}
		if !includePrivate && strings.HasPrefix(name, "_") {
			continue
		}
		out = append(out, Result{Name: name, Location: loc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// suggestSynonyms mirrors the category vocabulary a source tree tends to
// use for the same concern, so a query for one term surfaces symbols
// named after its synonyms too.
var suggestSynonyms = map[string][]string{
	"auth":           {"authentication", "login", "session", "token", "credential"},
	"authentication": {"auth", "login", "session", "token", "credential"},
	"db":             {"database", "query", "repository", "store", "sql"},
	"database":       {"db", "query", "repository", "store", "sql"},
	"queue":          {"kafka", "producer", "consumer", "broker", "topic"},
	"kafka":          {"queue", "producer", "consumer", "broker", "topic"},
	"error":          {"err", "failure", "exception", "fault"},
	"test":           {"spec", "mock", "fixture", "suite"},
	"config":         {"settings", "options", "env", "flags"},
	"http":           {"api", "handler", "route", "endpoint", "request"},
	"api":            {"http", "handler", "route", "endpoint", "request"},
	"user":           {"account", "profile", "identity", "member"},
	"file":           {"path", "document", "blob", "io"},
	"cache":          {"memo", "store", "buffer"},
	"log":            {"logger", "audit", "trace", "event"},
	"timeout":        {"deadline", "expiry", "ttl", "cancel"},
}

// Suggestion is one ranked symbol_index candidate for a query that
// returned no exact or substring match.
type Suggestion struct {
	Name       string
	Location   string
	Score      int
	Confidence float64
}

// Suggest ranks every symbol_index entry against q: +100 for a substring
// hit, +50 per overlapping word (split on '_', '-', and whitespace), and
// +25 per category-synonym hit. The top 3 are primary, the next 5 related.
func Suggest(idx *model.ProjectIndex, q string) (primary, related []Suggestion) {
	queryWords := splitWords(q)
	synonyms := make(map[string]bool)
	for _, w := range queryWords {
		for _, syn := range suggestSynonyms[strings.ToLower(w)] {
			synonyms[syn] = true
		}
	}

	var ranked []Suggestion
	lowerQ := strings.ToLower(q)
	for name, loc := range idx.SymbolIndex {
		score := 0
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, lowerQ) {
			score += 100
		}
		nameWords := splitWords(name)
		for _, qw := range queryWords {
			for _, nw := range nameWords {
				if strings.EqualFold(qw, nw) {
					score += 50
				}
			}
		}
		for _, nw := range nameWords {
			if synonyms[strings.ToLower(nw)] {
				score += 25
			}
		}
		if score == 0 {
			continue
		}
		confidence := float64(score) / 100
		if confidence > 1 {
			confidence = 1
		}
		ranked = append(ranked, Suggestion{Name: name, Location: loc, Score: score, Confidence: confidence})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > 3 {
		primary, ranked = ranked[:3], ranked[3:]
	} else {
		primary, ranked = ranked, nil
	}
	if len(ranked) > 5 {
		related = ranked[:5]
	} else {
		related = ranked
	}
	return primary, related
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '\t' || r == '\n'
	})
}
