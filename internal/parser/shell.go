package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// LineOrientedAdapter handles shell scripts. No tree-sitter grammar for
// shell exists in this toolchain's dependency set, so this adapter works
// directly off lines via bufio.Scanner and regexp, per the line-oriented
// family's rules: function definitions, positional-parameter signatures,
// source/dot imports, and call detection restricted to already-seen
// function names.
type LineOrientedAdapter struct{}

// NewShellAdapter constructs the line-oriented-family adapter.
func NewShellAdapter() *LineOrientedAdapter {
	return &LineOrientedAdapter{}
}

var (
	reFuncKeyword  = regexp.MustCompile(`^\s*function\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(\s*\))?\s*\{?\s*$`)
	rePosixFunc    = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*\)\s*\{?\s*$`)
	reExportDecl   = regexp.MustCompile(`^\s*export\s+([A-Za-z_][A-Za-z0-9_]*)=?`)
	reSourceStmt   = regexp.MustCompile(`^\s*(?:source|\.)\s+([^\s;|&]+)`)
	rePositional   = regexp.MustCompile(`\$\{?([1-9][0-9]*)\}?`)
	reCallBoundary = regexp.MustCompile(`(?:^|[;&|]|\$\(|` + "`" + `)\s*([A-Za-z_][A-Za-z0-9_]*)\b`)
)

func (a *LineOrientedAdapter) Parse(content []byte, path string) (model.ParseResult, error) {
	lines := splitLines(content)

	funcs := discoverShellFunctions(lines)
	symbols := buildShellSymbols(lines, funcs)
	exports := shellExports(lines, funcs)
	imports := shellImports(lines)

	return model.ParseResult{
		Imports: imports,
		Exports: exports,
		Symbols: symbols,
		Outline: buildOutline(symbols),
	}, nil
}

func splitLines(content []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

type shellFunc struct {
	name      string
	startLine int // 1-based
	endLine   int
}

// discoverShellFunctions finds name() { ... } and function name { ... }
// definitions, pairing braces to determine each function's extent.
func discoverShellFunctions(lines []string) []shellFunc {
	var funcs []shellFunc
	depth := 0
	var open *shellFunc
	for i, line := range lines {
		lineNo := i + 1
		if open == nil {
			name := ""
			if m := rePosixFunc.FindStringSubmatch(line); m != nil {
				name = m[1]
			} else if m := reFuncKeyword.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
			if name != "" {
				open = &shellFunc{name: name, startLine: lineNo}
				depth = strings.Count(line, "{") - strings.Count(line, "}")
				if depth <= 0 && strings.Contains(line, "{") {
					open.endLine = lineNo
					funcs = append(funcs, *open)
					open = nil
				}
				continue
			}
		} else {
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				open.endLine = lineNo
				funcs = append(funcs, *open)
				open = nil
			}
		}
	}
	if open != nil {
		open.endLine = len(lines)
		funcs = append(funcs, *open)
	}
	return funcs
}

func buildShellSymbols(lines []string, funcs []shellFunc) []model.SymbolNode {
	names := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		names[f.name] = true
	}
	out := make([]model.SymbolNode, 0, len(funcs))
	for _, f := range funcs {
		body := lines[f.startLine-1 : f.endLine]
		out = append(out, model.SymbolNode{
			Name:      f.name,
			Kind:      model.KindFunction,
			Line:      f.startLine,
			EndLine:   f.endLine,
			Signature: shellSignature(f.name, body),
			Calls:     dedupSortedCalls(collectShellCalls(body, names, f.name)),
		})
	}
	return out
}

// shellSignature reconstructs a positional-parameter signature from $1,
// $2, ... references inside the function body.
func shellSignature(name string, body []string) string {
	maxPos := 0
	for _, line := range body {
		for _, m := range rePositional.FindAllStringSubmatch(line, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxPos {
				maxPos = n
			}
		}
	}
	params := make([]string, maxPos)
	for i := 1; i <= maxPos; i++ {
		params[i-1] = "$" + strconv.Itoa(i)
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}

// collectShellCalls detects invocations of already-seen function names at
// line-start, after ; or &, or inside $(...) / backticks.
func collectShellCalls(body []string, known map[string]bool, selfName string) []string {
	var out []string
	for _, line := range body {
		if strings.TrimSpace(strings.SplitN(line, "#", 2)[0]) == "" {
			continue
		}
		code := line
		if idx := strings.Index(code, "#"); idx >= 0 {
			code = code[:idx]
		}
		for _, m := range reCallBoundary.FindAllStringSubmatch(code, -1) {
			name := m[1]
			if name == selfName {
				continue
			}
			if known[name] {
				out = append(out, name)
			}
		}
	}
	return out
}

func shellExports(lines []string, funcs []shellFunc) []model.ExportDecl {
	var out []model.ExportDecl
	for _, f := range funcs {
		out = append(out, model.ExportDecl{Name: f.name, Kind: model.ExportFunction, Line: f.startLine})
	}
	for i, line := range lines {
		if m := reExportDecl.FindStringSubmatch(line); m != nil {
			out = append(out, model.ExportDecl{Name: m[1], Kind: model.ExportVar, Line: i + 1})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

func shellImports(lines []string) []model.ImportEdge {
	var out []model.ImportEdge
	for _, line := range lines {
		code := line
		if idx := strings.Index(code, "#"); idx >= 0 {
			code = code[:idx]
		}
		if m := reSourceStmt.FindStringSubmatch(code); m != nil {
			out = append(out, model.ImportEdge{Module: strings.Trim(m[1], `"'`)})
		}
	}
	return out
}
