// Package discover walks a project root and returns the repo-relative
// paths eligible for indexing: matching an include glob, matching no
// exclude glob, at or under the size cap, and not a hidden root entry.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var defaultExcludes = []string{
	"**/.git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/node_modules/**",
	"**/venv/**",
	"**/.venv/**",
	"**/dist/**",
	"**/build/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/*.min.js",
	"**/*.bundle.js",
}

var defaultIncludes = []string{
	"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs",
	"**/*.py", "**/*.go", "**/*.rs", "**/*.sh",
}

// Discoverer walks a project root respecting include/exclude glob
// patterns and a maximum file size.
type Discoverer struct {
	includes    []string
	excludes    []string
	maxFileSize int64
}

// New constructs a Discoverer. Empty includes fall back to the supported
// source extensions; excludes are always appended to the standard
// non-source-directory exclusions.
func New(includes, excludes []string, maxFileSize int64) *Discoverer {
	if len(includes) == 0 {
		includes = defaultIncludes
	}
	all := make([]string, 0, len(defaultExcludes)+len(excludes))
	all = append(all, defaultExcludes...)
	all = append(all, excludes...)
	return &Discoverer{includes: includes, excludes: all, maxFileSize: maxFileSize}
}

// FileInfo describes one discovered file.
type FileInfo struct {
	Path      string // repo-relative, forward-slash-normalized
	SizeBytes int64
}

// Discover walks root and returns eligible files in lexicographic path
// order.
func (d *Discoverer) Discover(root string) ([]FileInfo, error) {
	var out []FileInfo
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if isHiddenRootEntry(root, path) && !d.isIncluded(relPath) {
				return filepath.SkipDir
			}
			if d.isExcludedDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHiddenRootEntry(root, path) && !d.isIncluded(relPath) {
			return nil
		}
		if d.isExcluded(relPath) {
			return nil
		}
		if !d.isIncluded(relPath) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.Size() > d.maxFileSize {
			return nil
		}
		out = append(out, FileInfo{Path: relPath, SizeBytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// isHiddenRootEntry reports whether path is a dotfile/dotdir directly
// under root (hidden entries at the root are excluded unless an include
// pattern explicitly matches them).
func isHiddenRootEntry(root, path string) bool {
	parent := filepath.Dir(path)
	if parent != root {
		return false
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

func (d *Discoverer) isExcludedDir(relPath string) bool {
	dirPath := relPath + "/"
	for _, pattern := range d.excludes {
		if matched, _ := doublestar.Match(pattern, dirPath); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (d *Discoverer) isExcluded(relPath string) bool {
	for _, pattern := range d.excludes {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (d *Discoverer) isIncluded(relPath string) bool {
	for _, pattern := range d.includes {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}
