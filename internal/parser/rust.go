package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// OwnershipAdapter handles the ownership-typed family: Rust.
type OwnershipAdapter struct {
	lang *sitter.Language
}

// NewRustAdapter constructs the ownership-typed-family adapter.
func NewRustAdapter() *OwnershipAdapter {
	return &OwnershipAdapter{lang: rust.GetLanguage()}
}

func (a *OwnershipAdapter) Parse(content []byte, path string) (model.ParseResult, error) {
	tree, err := sitterParse(a.lang, content)
	if err != nil || tree == nil {
		return model.ParseResult{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	symbols := extractRustSymbols(root, content)
	return model.ParseResult{
		Imports: extractRustImports(root, content),
		Exports: extractRustExports(root, content),
		Symbols: symbols,
		Outline: buildOutline(symbols),
	}, nil
}

// --- imports ---

func extractRustImports(root *sitter.Node, src []byte) []model.ImportEdge {
	var out []model.ImportEdge
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "use_declaration":
			out = append(out, flattenUseTree(findChildByField(n, "argument"), src, "")...)
			return
		case "extern_crate_declaration":
			if name := findChild(n, "identifier"); name != nil {
				out = append(out, model.ImportEdge{Module: nodeContent(name, src)})
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func flattenUseTree(n *sitter.Node, src []byte, prefix string) []model.ImportEdge {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "scoped_identifier":
		path := nodeContent(n, src)
		idx := strings.LastIndex(path, "::")
		module, name := path, ""
		if idx >= 0 {
			module, name = path[:idx], path[idx+2:]
		}
		return []model.ImportEdge{{Module: dotJoin(prefix, module), Names: []string{name}}}
	case "identifier":
		return []model.ImportEdge{{Module: prefix, Names: []string{nodeContent(n, src)}}}
	case "use_as_clause":
		path := findChildByField(n, "path")
		alias := findChildByField(n, "alias")
		edges := flattenUseTree(path, src, prefix)
		if len(edges) == 1 && alias != nil {
			edges[0].Alias = nodeContent(alias, src)
		}
		return edges
	case "scoped_use_list":
		base := nodeContent(findChildByField(n, "path"), src)
		list := findChild(n, "use_list")
		var out []model.ImportEdge
		if list != nil {
			for i := 0; i < int(list.ChildCount()); i++ {
				out = append(out, flattenUseTree(list.Child(i), src, dotJoin(prefix, base))...)
			}
		}
		return out
	case "use_wildcard":
		return []model.ImportEdge{{Module: prefix, Names: []string{"*"}}}
	}
	return nil
}

// --- exports ---

func extractRustExports(root *sitter.Node, src []byte) []model.ExportDecl {
	var out []model.ExportDecl
	for i := 0; i < int(root.ChildCount()); i++ {
		out = append(out, rustExportAt(root.Child(i), src)...)
	}
	return out
}

func rustExportAt(n *sitter.Node, src []byte) []model.ExportDecl {
	if !isPublic(n, src) {
		return nil
	}
	line, _ := pointOf(n)
	switch n.Type() {
	case "function_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportFunction, Line: line}}
	case "struct_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportType, Line: line}}
	case "enum_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportType, Line: line}}
	case "trait_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportInterface, Line: line}}
	case "type_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportType, Line: line}}
	case "const_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportConst, Line: line}}
	case "static_item":
		return []model.ExportDecl{{Name: declName(n, src), Kind: model.ExportVar, Line: line}}
	}
	return nil
}

func isPublic(n *sitter.Node, src []byte) bool {
	prev := n.PrevSibling()
	return prev != nil && prev.Type() == "visibility_modifier"
}

// --- symbols ---

func extractRustSymbols(root *sitter.Node, src []byte) []model.SymbolNode {
	var out []model.SymbolNode
	for i := 0; i < int(root.ChildCount()); i++ {
		n := root.Child(i)
		switch n.Type() {
		case "function_item":
			out = append(out, buildRustFunction(n, src, ""))
		case "struct_item":
			out = append(out, buildRustStruct(n, src))
		case "enum_item":
			out = append(out, buildRustEnum(n, src))
		case "trait_item":
			out = append(out, buildRustTrait(n, src))
		case "impl_item":
			out = append(out, buildRustImpl(n, src))
		case "type_item":
			line, col := pointOf(n)
			endLine, endCol := endPointOf(n)
			out = append(out, model.SymbolNode{Name: declName(n, src), Kind: model.KindTypeParam, Line: line, Column: col, EndLine: endLine, EndColumn: endCol})
		case "const_item", "static_item":
			kind := model.KindConstant
			line, col := pointOf(n)
			endLine, endCol := endPointOf(n)
			out = append(out, model.SymbolNode{Name: declName(n, src), Kind: kind, Line: line, Column: col, EndLine: endLine, EndColumn: endCol})
		case "mod_item":
			out = append(out, buildRustMod(n, src))
		}
	}
	return out
}

func buildRustFunction(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	body := findChild(n, "block")
	return model.SymbolNode{
		Name: name, Kind: model.KindFunction,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: rustSignature(n, src),
		Parent:    parent,
		Calls:     dedupSortedCalls(collectRustCalls(body, src)),
	}
}

func rustSignature(n *sitter.Node, src []byte) string {
	name := declName(n, src)
	sig := "fn " + name
	if params := findChild(n, "parameters"); params != nil {
		sig += nodeContent(params, src)
	}
	if ret := findChildByField(n, "return_type"); ret != nil {
		sig += " -> " + nodeContent(ret, src)
	}
	return sig
}

func buildRustStruct(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if fields := findChild(n, "field_declaration_list"); fields != nil {
		for i := 0; i < int(fields.ChildCount()); i++ {
			f := fields.Child(i)
			if f.Type() != "field_declaration" {
				continue
			}
			if id := findChild(f, "field_identifier"); id != nil {
				fl, fc := pointOf(f)
				fel, fec := endPointOf(f)
				children = append(children, model.SymbolNode{Name: nodeContent(id, src), Kind: model.KindField, Line: fl, Column: fc, EndLine: fel, EndColumn: fec, Parent: name})
			}
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindStruct, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: children}
}

func buildRustEnum(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "enum_variant_list"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			v := body.Child(i)
			if v.Type() != "enum_variant" {
				continue
			}
			if id := findChild(v, "identifier"); id != nil {
				vl, vc := pointOf(v)
				vel, vec := endPointOf(v)
				children = append(children, model.SymbolNode{Name: nodeContent(id, src), Kind: model.KindEnumMember, Line: vl, Column: vc, EndLine: vel, EndColumn: vec, Parent: name})
			}
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindEnum, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: children}
}

func buildRustTrait(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "declaration_list"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() != "function_signature_item" && m.Type() != "function_item" {
				continue
			}
			ml, mc := pointOf(m)
			mel, mec := endPointOf(m)
			children = append(children, model.SymbolNode{Name: declName(m, src), Kind: model.KindMethod, Line: ml, Column: mc, EndLine: mel, EndColumn: mec, Parent: name})
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindTrait, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: children}
}

func buildRustImpl(n *sitter.Node, src []byte) model.SymbolNode {
	target := ""
	if t := findChildByField(n, "type"); t != nil {
		target = nodeContent(t, src)
	}
	name := "impl " + target
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "declaration_list"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() != "function_item" {
				continue
			}
			children = append(children, buildRustFunction(m, src, name))
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindModule, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: children}
}

func buildRustMod(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "declaration_list"); body != nil {
		children = extractRustSymbolsIn(body, src, name)
	}
	return model.SymbolNode{Name: name, Kind: model.KindModule, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: children}
}

func extractRustSymbolsIn(body *sitter.Node, src []byte, parent string) []model.SymbolNode {
	var out []model.SymbolNode
	for i := 0; i < int(body.ChildCount()); i++ {
		n := body.Child(i)
		switch n.Type() {
		case "function_item":
			out = append(out, buildRustFunction(n, src, parent))
		case "struct_item":
			out = append(out, buildRustStruct(n, src))
		case "enum_item":
			out = append(out, buildRustEnum(n, src))
		case "trait_item":
			out = append(out, buildRustTrait(n, src))
		case "impl_item":
			out = append(out, buildRustImpl(n, src))
		}
	}
	return out
}

// collectRustCalls collects call expressions (plain identifier, scoped
// path, field expression) and macro invocations (suffixed "!").
func collectRustCalls(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(n *sitter.Node, top bool)
	walk = func(n *sitter.Node, top bool) {
		if !top {
			if n.Type() == "function_item" {
				return
			}
		}
		switch n.Type() {
		case "call_expression":
			if fn := findChildByField(n, "function"); fn != nil {
				if t := rustCallTarget(fn, src); t != "" {
					out = append(out, t)
				}
			}
		case "macro_invocation":
			if m := findChildByField(n, "macro"); m != nil {
				out = append(out, nodeContent(m, src)+"!")
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(n, true)
	return out
}

func rustCallTarget(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return nodeContent(n, src)
	case "scoped_identifier":
		return nodeContent(n, src)
	case "field_expression":
		return nodeContent(n, src)
	}
	return ""
}
