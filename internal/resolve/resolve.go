// Package resolve resolves import specifiers against the set of files
// known to a project index.
package resolve

import (
	"path"
	"strings"
)

// SourceExtensions lists the extensions tried, in order, when resolving a
// relative specifier that has none of its own.
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".rs", ".sh"}

// Exists reports whether a repo-relative path is a known file. Callers
// supply this as a closure over the current file set (e.g. ProjectIndex.Files).
type Exists func(repoRelativePath string) bool

// Resolve resolves specifier as imported from fromPath. Non-relative
// specifiers (no leading ".") resolve to themselves — they remain
// external. Relative specifiers are tried, in order: the literal path
// (if it exists), the path with
// each supported extension appended, and each extension's "/index.<ext>"
// variant. The first existing candidate is returned, forward-slash
// normalized and repo-relative. If nothing exists, Resolve returns
// ("", false) and the caller treats the specifier as unresolved.
func Resolve(specifier, fromPath string, exists Exists) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		return specifier, false
	}

	dir := path.Dir(normalizeSlashes(fromPath))
	joined := path.Clean(path.Join(dir, specifier))

	candidates := []string{joined}
	for _, ext := range SourceExtensions {
		candidates = append(candidates, joined+ext)
	}
	for _, ext := range SourceExtensions {
		candidates = append(candidates, path.Join(joined, "index"+ext))
	}

	for _, c := range candidates {
		c = normalizeSlashes(c)
		if exists(c) {
			return c, true
		}
	}
	return "", false
}

func normalizeSlashes(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "./")
}
