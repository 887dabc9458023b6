package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// IndentationAdapter handles the Python-style indentation family.
type IndentationAdapter struct {
	lang *sitter.Language
}

// NewPythonAdapter constructs the indentation-family adapter.
func NewPythonAdapter() *IndentationAdapter {
	return &IndentationAdapter{lang: python.GetLanguage()}
}

func (a *IndentationAdapter) Parse(content []byte, path string) (model.ParseResult, error) {
	tree, err := sitterParse(a.lang, content)
	if err != nil || tree == nil {
		return model.ParseResult{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	symbols := extractPySymbols(root, content, "")
	return model.ParseResult{
		Imports: extractPyImports(root, content),
		Exports: extractPyExports(root, content),
		Symbols: symbols,
		Outline: buildOutline(symbols),
	}, nil
}

// --- imports ---

func extractPyImports(root *sitter.Node, src []byte) []model.ImportEdge {
	var out []model.ImportEdge
	for i := 0; i < int(root.ChildCount()); i++ {
		out = append(out, extractPyImportsAt(root.Child(i), src)...)
	}
	return out
}

func extractPyImportsAt(n *sitter.Node, src []byte) []model.ImportEdge {
	var out []model.ImportEdge
	switch n.Type() {
	case "import_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "dotted_name":
				out = append(out, model.ImportEdge{Module: nodeContent(c, src)})
			case "aliased_import":
				mod := findChild(c, "dotted_name")
				alias := lastChild(c)
				edge := model.ImportEdge{}
				if mod != nil {
					edge.Module = nodeContent(mod, src)
				}
				if alias != nil && alias.Type() == "identifier" {
					edge.Alias = nodeContent(alias, src)
				}
				out = append(out, edge)
			}
		}
	case "import_from_statement":
		module := ""
		moduleNode := findChildByField(n, "module_name")
		if moduleNode != nil {
			module = nodeContent(moduleNode, src)
		}
		var names []string
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "wildcard_import":
				names = append(names, "*")
			case "dotted_name":
				// names after the "import" keyword are dotted_name nodes;
				// skip the one that is the module_name itself
				if moduleNode == nil || c.StartByte() != moduleNode.StartByte() {
					names = append(names, nodeContent(c, src))
				}
			case "aliased_import":
				mod := findChildByField(c, "name")
				alias := findChildByField(c, "alias")
				if mod != nil && alias != nil {
					names = append(names, nodeContent(mod, src)+" as "+nodeContent(alias, src))
				}
			}
		}
		out = append(out, model.ImportEdge{Module: module, Names: names})
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Type() != "import_statement" && n.Type() != "import_from_statement" {
			out = append(out, extractPyImportsAt(n.Child(i), src)...)
		}
	}
	return out
}

func lastChild(n *sitter.Node) *sitter.Node {
	if n.ChildCount() == 0 {
		return nil
	}
	return n.Child(int(n.ChildCount()) - 1)
}

// --- exports ---

func extractPyExports(root *sitter.Node, src []byte) []model.ExportDecl {
	var out []model.ExportDecl
	for i := 0; i < int(root.ChildCount()); i++ {
		n := root.Child(i)
		line, _ := pointOf(n)
		switch n.Type() {
		case "function_definition":
			name := declName(n, src)
			if name != "" && !strings.HasPrefix(name, "_") {
				out = append(out, model.ExportDecl{Name: name, Kind: model.ExportFunction, Line: line})
			}
		case "class_definition":
			name := declName(n, src)
			if name != "" && !strings.HasPrefix(name, "_") {
				out = append(out, model.ExportDecl{Name: name, Kind: model.ExportClass, Line: line})
			}
		case "expression_statement":
			if assign := findChild(n, "assignment"); assign != nil {
				if id := findChild(assign, "identifier"); id != nil {
					name := nodeContent(id, src)
					if !strings.HasPrefix(name, "_") {
						out = append(out, model.ExportDecl{Name: name, Kind: model.ExportVar, Line: line})
					}
				}
			}
		}
	}
	return out
}

// --- symbols ---

func extractPySymbols(n *sitter.Node, src []byte, parent string) []model.SymbolNode {
	var out []model.SymbolNode
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "function_definition":
			fn := buildPyFunction(c, src, parent, model.KindFunction)
			fn.Children = extractPySymbols(findChild(c, "block"), src, fn.Name)
			out = append(out, fn)
		case "class_definition":
			out = append(out, buildPyClass(c, src, parent))
		case "expression_statement":
			if assign := findChild(c, "assignment"); assign != nil {
				if id := findChild(assign, "identifier"); id != nil {
					line, col := pointOf(c)
					endLine, endCol := endPointOf(c)
					kind := model.KindVariable
					name := nodeContent(id, src)
					if name == strings.ToUpper(name) {
						kind = model.KindConstant
					}
					out = append(out, model.SymbolNode{Name: name, Kind: kind, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent})
				}
			}
		}
	}
	return out
}

func buildPyFunction(n *sitter.Node, src []byte, parent string, kind model.SymbolKind) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	body := findChild(n, "block")
	return model.SymbolNode{
		Name: name, Kind: kind,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: pySignature(n, src),
		Docstring: pyDocstring(body, src),
		Parent:    parent,
		Calls:     dedupSortedCalls(collectPyCalls(body, src, name)),
	}
}

func buildPyClass(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	body := findChild(n, "block")
	var children []model.SymbolNode
	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() == "function_definition" {
				method := buildPyFunction(m, src, name, model.KindMethod)
				children = append(children, method)
			}
		}
	}
	return model.SymbolNode{
		Name: name, Kind: model.KindClass,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Docstring: pyDocstring(body, src),
		Parent:    parent,
		Children:  children,
	}
}

func pySignature(n *sitter.Node, src []byte) string {
	name := declName(n, src)
	sig := "def " + name
	if params := findChild(n, "parameters"); params != nil {
		sig += nodeContent(params, src)
	}
	if retType := findChild(n, "type"); retType != nil {
		sig += " -> " + nodeContent(retType, src)
	}
	return sig
}

func pyDocstring(body *sitter.Node, src []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	if str := findChild(first, "string"); str != nil {
		return cleanDocstring(nodeContent(str, src))
	}
	return ""
}

// collectPyCalls walks a function body collecting call targets: plain
// calls, attribute calls (method name, plus receiver.method when the
// receiver is not the implicit self — per §9's Open Question, a receiver
// that is itself an attribute access records only the method name),
// and awaited calls. Descent stops at nested function/class boundaries.
func collectPyCalls(n *sitter.Node, src []byte, selfFuncName string) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(n *sitter.Node, top bool)
	walk = func(n *sitter.Node, top bool) {
		if !top {
			switch n.Type() {
			case "function_definition", "class_definition":
				return
			}
		}
		if n.Type() == "call" {
			if callee := n.Child(0); callee != nil {
				out = append(out, pyCallTargets(callee, src)...)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(n, true)
	return out
}

func pyCallTargets(n *sitter.Node, src []byte) []string {
	switch n.Type() {
	case "identifier":
		return []string{nodeContent(n, src)}
	case "attribute":
		full := nodeContent(n, src)
		method := full
		if idx := strings.LastIndex(full, "."); idx >= 0 {
			method = full[idx+1:]
		}
		recv := findChildByField(n, "object")
		if recv != nil && recv.Type() == "identifier" && nodeContent(recv, src) == "self" {
			return []string{method}
		}
		if recv != nil && recv.Type() == "identifier" {
			return []string{method, full}
		}
		// nested attribute chain (a.b.c()): record only the method name.
		return []string{method}
	case "await":
		if callExpr := findChild(n, "call"); callExpr != nil {
			if callee := callExpr.Child(0); callee != nil {
				return pyCallTargets(callee, src)
			}
		}
	}
	return nil
}
