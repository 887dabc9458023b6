// Package semcache implements the on-disk semantic cache: one
// line-delimited JSON file per project, holding a header line and one
// entry line per embedded symbol. Loads and saves are atomic (write to a
// temp file, rename over the target) so a crash mid-write never corrupts
// the previous cache.
package semcache

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/randalmurphal/code-indexer/internal/embed"
)

// header is the cache file's first line.
type header struct {
	ModelID string `json:"model_id"`
	Count   int    `json:"count"`
}

// entry is one embedded symbol, one per subsequent line.
type entry struct {
	ID   string    `json:"id"`
	File string    `json:"file"`
	Line int       `json:"line,omitempty"`
	Text string    `json:"text"`
	Vec  []float32 `json:"vec"`
}

// Cache is the in-memory mirror of the on-disk semantic cache.
type Cache struct {
	ModelID string
	entries []entry
}

// Load reads a cache file. A missing file returns an empty Cache with no
// error, since the caller is expected to rebuild from scratch.
func Load(path string) (*Cache, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &Cache{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return &Cache{}, nil
	}
	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("parse cache header: %w", err)
	}

	c := &Cache{ModelID: h.ModelID, entries: make([]entry, 0, h.Count)}
	for scanner.Scan() {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("parse cache entry: %w", err)
		}
		c.entries = append(c.entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	return c, nil
}

// Save atomically rewrites the cache file: the whole structure is bulk
// replaced on every save, matching the "rebuild end-to-end" reuse policy
// rather than an append log.
func (c *Cache) Save(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}

	w := bufio.NewWriter(f)
	h := header{ModelID: c.ModelID, Count: len(c.entries)}
	if err := writeLine(w, h); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	for _, e := range c.entries {
		if err := writeLine(w, e); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeLine(w *bufio.Writer, v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// Source is one symbol text entry to embed: Text holds the symbol's
// qualified name, and the cache identifies entries by "file:symbol" (or
// just "file" when the symbol is empty), mirroring the teacher's
// "file:symbol" chunk ID construction.
type Source struct {
	File string
	Line int
	Text string
}

func sourceID(s Source) string {
	if s.Text == "" {
		return s.File
	}
	return fmt.Sprintf("%s:%s", s.File, s.Text)
}

// Reusable reports whether an existing cache can be kept as-is rather than
// rebuilt: the model must match and the entry set (by id and text) must be
// identical to the current sources.
func (c *Cache) Reusable(modelID string, sources []Source) bool {
	if c.ModelID != modelID {
		return false
	}
	if len(c.entries) != len(sources) {
		return false
	}
	want := make(map[string]string, len(sources))
	for _, s := range sources {
		want[sourceID(s)] = s.Text
	}
	for _, e := range c.entries {
		text, ok := want[e.ID]
		if !ok || text != e.Text {
			return false
		}
	}
	return true
}

// Rebuild regenerates the cache end-to-end from sources using provider,
// replacing any existing entries.
func Rebuild(ctx context.Context, provider *embed.LocalProvider, sources []Source) (*Cache, error) {
	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Text
	}
	vectors, err := provider.EmbedBatched(ctx, texts, 64)
	if err != nil {
		return nil, fmt.Errorf("embed sources: %w", err)
	}

	entries := make([]entry, len(sources))
	for i, s := range sources {
		entries[i] = entry{
			ID:   sourceID(s),
			File: s.File,
			Line: s.Line,
			Text: s.Text,
			Vec:  vectors[i],
		}
	}
	return &Cache{ModelID: provider.Model(), entries: entries}, nil
}

// Match is one semantic_search hit.
type Match struct {
	ID    string
	File  string
	Line  int
	Score float64
}

// Search embeds query once and returns the top-k entries by cosine
// similarity, descending, truncated to k (0 defaults to 20).
func (c *Cache) Search(ctx context.Context, provider *embed.LocalProvider, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = 20
	}
	vectors, err := provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vectors[0]

	matches := make([]Match, 0, len(c.entries))
	for _, e := range c.entries {
		matches = append(matches, Match{
			ID:    e.ID,
			File:  e.File,
			Line:  e.Line,
			Score: embed.CosineSimilarity(queryVec, e.Vec),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Path returns the conventional semantic cache path for a project rooted
// at root: a sibling of the project index file.
func Path(root string) string {
	return filepath.Join(root, ".context", ".project", "PROJECT_INDEX.vectors.jsonl")
}

// Len reports the number of embedded entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// VectorEntry is one embedded symbol exposed for mirroring into an
// external vector store; it carries the same fields as the on-disk
// entry without exporting the on-disk type itself.
type VectorEntry struct {
	ID   string
	File string
	Line int
	Text string
	Vec  []float32
}

// Entries returns every embedded entry for mirroring into an external
// vector store. The returned slice is a copy; mutating it has no effect
// on the cache.
func (c *Cache) Entries() []VectorEntry {
	out := make([]VectorEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = VectorEntry{ID: e.ID, File: e.File, Line: e.Line, Text: e.Text, Vec: e.Vec}
	}
	return out
}
