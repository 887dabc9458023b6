// Package parser implements the per-language-family parser adapters of
// the project index: each adapter turns file bytes + a repo-relative path
// into a normalized model.ParseResult. Adapters are pure with respect to
// their inputs and never panic past the adapter boundary — a tree-sitter
// parse failure yields an empty result plus a recoverable warning.
package parser

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// Adapter is the contract every parser adapter implements.
type Adapter interface {
	Parse(content []byte, path string) (model.ParseResult, error)
}

// sitterParse runs a tree-sitter parse, recovering from any parser panic
// (malformed grammar input can trip assertions in the C bindings) so a
// single bad file never aborts the index build.
func sitterParse(lang *sitter.Language, content []byte) (tree *sitter.Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = errPanic
		}
	}()
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return p.ParseCtx(context.Background(), nil, content)
}

var errPanic = &parseError{"tree-sitter parse panicked"}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

// --- shared AST-walk helpers (used by every tree-sitter-backed family) ---

func findChild(n *sitter.Node, fieldOrType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == fieldOrType {
			return c
		}
	}
	return nil
}

func findChildByField(n *sitter.Node, field string) *sitter.Node {
	return n.ChildByFieldName(field)
}

// findChildByType returns the first descendant (depth-first, pre-order)
// whose node type matches, searching deeper than findChild's flat scan
// when the target may be wrapped by other nodes between it and n.
func findChildByType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == nodeType {
			return c
		}
		if found := findChildByType(c, nodeType); found != nil {
			return found
		}
	}
	return nil
}

func nodeContent(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func nodeText(n *sitter.Node, src []byte) string { return nodeContent(n, src) }

func cleanDocstring(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func dotJoin(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// dedupSortedCalls returns calls, deduplicated and sorted ascending, per
// the SymbolNode.Calls invariant.
func dedupSortedCalls(calls []string) []string {
	if len(calls) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(calls))
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func pointOf(n *sitter.Node) (line, col int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}

func endPointOf(n *sitter.Node) (line, col int) {
	p := n.EndPoint()
	return int(p.Row) + 1, int(p.Column)
}

// buildOutline derives a flat, line-sorted outline from a symbol tree:
// one entry per top-level and nested declaration, indentation-leveled by
// nesting depth.
func buildOutline(symbols []model.SymbolNode) []model.OutlineEntry {
	var out []model.OutlineEntry
	var walk func(nodes []model.SymbolNode, level int)
	walk = func(nodes []model.SymbolNode, level int) {
		for _, n := range nodes {
			out = append(out, model.OutlineEntry{Title: n.Name, Level: level, Line: n.Line})
			if len(n.Children) > 0 {
				walk(n.Children, level+1)
			}
		}
	}
	walk(symbols, 0)
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}
