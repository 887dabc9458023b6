package parser

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// CLikeAdapter handles the C-like systems family: Go, where visibility is
// capitalization and imports are per-spec edges.
type CLikeAdapter struct {
	lang *sitter.Language
}

// NewGoAdapter constructs the C-like-family adapter.
func NewGoAdapter() *CLikeAdapter {
	return &CLikeAdapter{lang: golang.GetLanguage()}
}

func (a *CLikeAdapter) Parse(content []byte, path string) (model.ParseResult, error) {
	tree, err := sitterParse(a.lang, content)
	if err != nil || tree == nil {
		return model.ParseResult{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	symbols := extractGoSymbols(root, content)
	return model.ParseResult{
		Imports: extractGoImports(root, content),
		Exports: extractGoExports(root, content),
		Symbols: symbols,
		Outline: buildOutline(symbols),
	}, nil
}

func exportedName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

// --- imports ---

func extractGoImports(root *sitter.Node, src []byte) []model.ImportEdge {
	var out []model.ImportEdge
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "import_spec" {
			out = append(out, parseGoImportSpec(n, src))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func parseGoImportSpec(n *sitter.Node, src []byte) model.ImportEdge {
	edge := model.ImportEdge{}
	if path := findChildByField(n, "path"); path != nil {
		edge.Module = stripQuotes(nodeContent(path, src))
	}
	if name := findChildByField(n, "name"); name != nil {
		alias := nodeContent(name, src)
		switch alias {
		case "_":
			edge.Names = []string{"dynamic"}
		case ".":
			edge.DefaultImport = true
		default:
			edge.Alias = alias
		}
	}
	return edge
}

// --- exports ---

func extractGoExports(root *sitter.Node, src []byte) []model.ExportDecl {
	var out []model.ExportDecl
	for i := 0; i < int(root.ChildCount()); i++ {
		n := root.Child(i)
		line, _ := pointOf(n)
		switch n.Type() {
		case "function_declaration":
			name := declName(n, src)
			if exportedName(name) {
				out = append(out, model.ExportDecl{Name: name, Kind: model.ExportFunction, Line: line, Signature: goSignature(n, src)})
			}
		case "type_declaration":
			for j := 0; j < int(n.ChildCount()); j++ {
				spec := n.Child(j)
				if spec.Type() != "type_spec" {
					continue
				}
				name := declName(spec, src)
				if exportedName(name) {
					out = append(out, model.ExportDecl{Name: name, Kind: model.ExportType, Line: line})
				}
			}
		case "const_declaration", "var_declaration":
			kind := model.ExportVar
			if n.Type() == "const_declaration" {
				kind = model.ExportConst
			}
			for j := 0; j < int(n.ChildCount()); j++ {
				spec := n.Child(j)
				if spec.Type() != "const_spec" && spec.Type() != "var_spec" {
					continue
				}
				if id := findChild(spec, "identifier"); id != nil {
					name := nodeContent(id, src)
					if exportedName(name) {
						out = append(out, model.ExportDecl{Name: name, Kind: kind, Line: line})
					}
				}
			}
		}
	}
	return out
}

// --- symbols ---

func extractGoSymbols(root *sitter.Node, src []byte) []model.SymbolNode {
	var out []model.SymbolNode
	for i := 0; i < int(root.ChildCount()); i++ {
		n := root.Child(i)
		switch n.Type() {
		case "function_declaration":
			out = append(out, buildGoFunction(n, src))
		case "method_declaration":
			out = append(out, buildGoMethod(n, src))
		case "type_declaration":
			for j := 0; j < int(n.ChildCount()); j++ {
				spec := n.Child(j)
				if spec.Type() == "type_spec" {
					out = append(out, buildGoTypeSpec(spec, src))
				}
			}
		case "const_declaration", "var_declaration":
			kind := model.KindVariable
			if n.Type() == "const_declaration" {
				kind = model.KindConstant
			}
			for j := 0; j < int(n.ChildCount()); j++ {
				spec := n.Child(j)
				if spec.Type() != "const_spec" && spec.Type() != "var_spec" {
					continue
				}
				if id := findChild(spec, "identifier"); id != nil {
					line, col := pointOf(spec)
					endLine, endCol := endPointOf(spec)
					out = append(out, model.SymbolNode{Name: nodeContent(id, src), Kind: kind, Line: line, Column: col, EndLine: endLine, EndColumn: endCol})
				}
			}
		}
	}
	return out
}

func buildGoFunction(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	body := findChildByField(n, "body")
	return model.SymbolNode{
		Name: name, Kind: model.KindFunction,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: goSignature(n, src),
		Calls:     dedupSortedCalls(collectGoCalls(body, src)),
	}
}

func buildGoMethod(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	recv := findChildByField(n, "receiver")
	recvType := ""
	if recv != nil {
		recvType = goReceiverTypeName(recv, src)
	}
	qualified := dotJoin(recvType, name)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	body := findChildByField(n, "body")
	return model.SymbolNode{
		Name: qualified, Kind: model.KindMethod,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: goSignature(n, src),
		Parent:    recvType,
		Calls:     dedupSortedCalls(collectGoCalls(body, src)),
	}
}

func goReceiverTypeName(recv *sitter.Node, src []byte) string {
	for i := 0; i < int(recv.ChildCount()); i++ {
		c := recv.Child(i)
		if c.Type() == "parameter_declaration" {
			t := findChildByField(c, "type")
			if t != nil {
				txt := nodeContent(t, src)
				return strings.TrimPrefix(txt, "*")
			}
		}
	}
	return ""
}

func buildGoTypeSpec(n *sitter.Node, src []byte) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	typeNode := findChildByField(n, "type")
	if typeNode == nil {
		return model.SymbolNode{Name: name, Kind: model.KindTypeParam, Line: line, Column: col, EndLine: endLine, EndColumn: endCol}
	}
	switch typeNode.Type() {
	case "struct_type":
		return model.SymbolNode{Name: name, Kind: model.KindStruct, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: goStructFields(typeNode, src, name)}
	case "interface_type":
		return model.SymbolNode{Name: name, Kind: model.KindInterface, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Children: goInterfaceMethods(typeNode, src, name)}
	default:
		return model.SymbolNode{Name: name, Kind: model.KindTypeParam, Line: line, Column: col, EndLine: endLine, EndColumn: endCol}
	}
}

func goStructFields(n *sitter.Node, src []byte, parent string) []model.SymbolNode {
	var out []model.SymbolNode
	fields := findChild(n, "field_declaration_list")
	if fields == nil {
		return nil
	}
	for i := 0; i < int(fields.ChildCount()); i++ {
		f := fields.Child(i)
		if f.Type() != "field_declaration" {
			continue
		}
		if id := findChild(f, "field_identifier"); id != nil {
			line, col := pointOf(f)
			endLine, endCol := endPointOf(f)
			out = append(out, model.SymbolNode{Name: nodeContent(id, src), Kind: model.KindField, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent})
		}
	}
	return out
}

func goInterfaceMethods(n *sitter.Node, src []byte, parent string) []model.SymbolNode {
	var out []model.SymbolNode
	list := findChild(n, "method_spec_list")
	if list == nil {
		return nil
	}
	for i := 0; i < int(list.ChildCount()); i++ {
		m := list.Child(i)
		if m.Type() != "method_spec" {
			continue
		}
		if id := findChild(m, "field_identifier"); id != nil {
			line, col := pointOf(m)
			endLine, endCol := endPointOf(m)
			out = append(out, model.SymbolNode{Name: nodeContent(id, src), Kind: model.KindMethod, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent})
		}
	}
	return out
}

func goSignature(n *sitter.Node, src []byte) string {
	name := declName(n, src)
	sig := "func " + name
	if params := findChildByField(n, "parameters"); params != nil {
		sig += nodeContent(params, src)
	}
	if result := findChildByField(n, "result"); result != nil {
		sig += " " + nodeContent(result, src)
	}
	return sig
}

func collectGoCalls(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(n *sitter.Node, top bool)
	walk = func(n *sitter.Node, top bool) {
		if !top {
			switch n.Type() {
			case "function_declaration", "func_literal":
				return
			}
		}
		if n.Type() == "call_expression" {
			if fn := findChildByField(n, "function"); fn != nil {
				out = append(out, nodeContent(fn, src))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(n, true)
	return out
}
