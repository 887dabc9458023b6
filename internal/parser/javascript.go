package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tssitter "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// CurlyBraceAdapter handles the curly-brace + JSX family: JavaScript and
// TypeScript. View-framework component detection and HTTP-endpoint
// detection are applied as extra passes gated on recognized imports.
type CurlyBraceAdapter struct {
	lang *sitter.Language
	isTS bool
}

// NewJavaScriptAdapter constructs the JavaScript member of the family.
func NewJavaScriptAdapter() *CurlyBraceAdapter {
	return &CurlyBraceAdapter{lang: javascript.GetLanguage()}
}

// NewTypeScriptAdapter constructs the TypeScript member of the family.
func NewTypeScriptAdapter() *CurlyBraceAdapter {
	return &CurlyBraceAdapter{lang: tssitter.GetLanguage(), isTS: true}
}

func (a *CurlyBraceAdapter) Parse(content []byte, path string) (model.ParseResult, error) {
	tree, err := sitterParse(a.lang, content)
	if err != nil || tree == nil {
		return model.ParseResult{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	imports := extractJSImports(root, content)
	exports := extractJSExports(root, content)
	symbols := extractJSSymbols(root, content, "")

	result := model.ParseResult{
		Imports: imports,
		Exports: exports,
		Symbols: symbols,
		Outline: buildOutline(symbols),
	}

	if hasImportFrom(imports, "react", "preact") {
		result.UIComponents = detectJSComponents(root, content)
	}
	if framework, ok := detectServerFramework(imports); ok {
		result.APIEndpoints = detectJSEndpoints(root, content, framework)
	}

	return result, nil
}

func hasImportFrom(imports []model.ImportEdge, modules ...string) bool {
	for _, im := range imports {
		for _, m := range modules {
			if strings.Contains(im.Module, m) {
				return true
			}
		}
	}
	return false
}

func detectServerFramework(imports []model.ImportEdge) (string, bool) {
	frameworks := map[string]string{"express": "express", "fastify": "fastify", "koa": "koa", "hapi": "hapi"}
	for _, im := range imports {
		if fw, ok := frameworks[im.Module]; ok {
			return fw, true
		}
	}
	return "", false
}

// --- imports ---

func extractJSImports(root *sitter.Node, src []byte) []model.ImportEdge {
	var out []model.ImportEdge
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			out = append(out, parseJSImportStatement(n, src))
			return
		case "call_expression":
			if callee := n.Child(0); callee != nil && callee.Type() == "identifier" &&
				nodeContent(callee, src) == "import" {
				if args := findChildByField(n, "arguments"); args != nil {
					if str := firstStringArg(args, src); str != "" {
						out = append(out, model.ImportEdge{Module: str, Names: []string{"dynamic"}})
					}
				}
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func firstStringArg(args *sitter.Node, src []byte) string {
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if c.Type() == "string" {
			return stripQuotes(nodeContent(c, src))
		}
	}
	return ""
}

func stripQuotes(s string) string { return strings.Trim(s, `"'`+"`") }

func parseJSImportStatement(n *sitter.Node, src []byte) model.ImportEdge {
	edge := model.ImportEdge{}
	if srcNode := findChildByType(n, "string"); srcNode != nil {
		edge.Module = strings.Trim(nodeContent(srcNode, src), `"'`+"`")
	}
	clause := findChild(n, "import_clause")
	if clause == nil {
		return edge // side-effect-only import
	}
	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		switch c.Type() {
		case "identifier":
			edge.DefaultImport = true
			edge.Names = append(edge.Names, nodeContent(c, src))
		case "namespace_import":
			if id := findChild(c, "identifier"); id != nil {
				edge.Alias = nodeContent(id, src)
			}
		case "named_imports":
			for j := 0; j < int(c.ChildCount()); j++ {
				spec := c.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := nodeContent(spec, src)
				edge.Names = append(edge.Names, strings.Join(strings.Fields(name), " "))
			}
		}
	}
	return edge
}

// --- exports ---

func extractJSExports(root *sitter.Node, src []byte) []model.ExportDecl {
	var out []model.ExportDecl
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "export_statement" {
			out = append(out, parseJSExportStatement(n, src)...)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func parseJSExportStatement(n *sitter.Node, src []byte) []model.ExportDecl {
	line, _ := pointOf(n)
	var out []model.ExportDecl

	isDefault := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "default" {
			isDefault = true
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "function_declaration", "generator_function_declaration":
			name := declName(c, src)
			kind := model.ExportFunction
			if isDefault {
				kind = model.ExportDefault
			}
			out = append(out, model.ExportDecl{Name: nameOrDefault(name, isDefault), Kind: kind, Line: line, Signature: jsSignature(c, src)})
		case "class_declaration":
			name := declName(c, src)
			kind := model.ExportClass
			if isDefault {
				kind = model.ExportDefault
			}
			out = append(out, model.ExportDecl{Name: nameOrDefault(name, isDefault), Kind: kind, Line: line})
		case "interface_declaration":
			out = append(out, model.ExportDecl{Name: declName(c, src), Kind: model.ExportInterface, Line: line})
		case "type_alias_declaration":
			out = append(out, model.ExportDecl{Name: declName(c, src), Kind: model.ExportType, Line: line})
		case "enum_declaration":
			out = append(out, model.ExportDecl{Name: declName(c, src), Kind: model.ExportType, Line: line})
		case "lexical_declaration", "variable_declaration":
			content := nodeContent(c, src)
			declKind := model.ExportVar
			if strings.HasPrefix(content, "const") {
				declKind = model.ExportConst
			} else if strings.HasPrefix(content, "let") {
				declKind = model.ExportLet
			}
			for j := 0; j < int(c.ChildCount()); j++ {
				decl := c.Child(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				if id := findChild(decl, "identifier"); id != nil {
					out = append(out, model.ExportDecl{Name: nodeContent(id, src), Kind: declKind, Line: line})
				}
			}
		case "identifier":
			// export default <expr> where expr is a bare identifier
			out = append(out, model.ExportDecl{Name: nodeContent(c, src), Kind: model.ExportDefault, Line: line})
		case "export_clause":
			for j := 0; j < int(c.ChildCount()); j++ {
				spec := c.Child(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				out = append(out, model.ExportDecl{Name: nodeContent(spec, src), Kind: model.ExportVar, Line: line})
			}
		}
	}
	return out
}

func nameOrDefault(name string, isDefault bool) string {
	if isDefault {
		return "default"
	}
	return name
}

func declName(n *sitter.Node, src []byte) string {
	if id := findChildByField(n, "name"); id != nil {
		return nodeContent(id, src)
	}
	return ""
}

func jsSignature(n *sitter.Node, src []byte) string {
	name := declName(n, src)
	params := findChildByField(n, "parameters")
	retType := findChildByField(n, "return_type")
	sig := name + nodeContent(params, src)
	if retType != nil {
		sig += nodeContent(retType, src)
	}
	return sig
}

// --- symbols ---

func extractJSSymbols(n *sitter.Node, src []byte, parent string) []model.SymbolNode {
	var out []model.SymbolNode
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "export_statement":
			// descend into the wrapped declaration
			out = append(out, extractJSSymbols(c, src, parent)...)
		case "function_declaration", "generator_function_declaration":
			out = append(out, buildJSFunction(c, src, parent))
		case "class_declaration":
			out = append(out, buildJSClass(c, src, parent))
		case "interface_declaration":
			out = append(out, buildJSInterface(c, src, parent))
		case "enum_declaration":
			out = append(out, buildJSEnum(c, src, parent))
		case "type_alias_declaration":
			name := declName(c, src)
			line, col := pointOf(c)
			endLine, endCol := endPointOf(c)
			out = append(out, model.SymbolNode{Name: name, Kind: model.KindTypeParam, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent})
		case "lexical_declaration", "variable_declaration":
			isConst := strings.HasPrefix(nodeContent(c, src), "const")
			for j := 0; j < int(c.ChildCount()); j++ {
				decl := c.Child(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				id := findChild(decl, "identifier")
				if id == nil {
					continue
				}
				kind := model.KindVariable
				if isConst {
					kind = model.KindConstant
				}
				line, col := pointOf(decl)
				endLine, endCol := endPointOf(decl)
				out = append(out, model.SymbolNode{
					Name: nodeContent(id, src), Kind: kind,
					Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
					Parent: parent,
					Calls:  dedupSortedCalls(collectJSCalls(decl, src)),
				})
			}
		}
	}
	return out
}

func buildJSFunction(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var calls []string
	if body := findChildByField(n, "body"); body != nil {
		calls = collectJSCalls(body, src)
	}
	return model.SymbolNode{
		Name: name, Kind: model.KindFunction,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: jsSignature(n, src),
		Docstring: leadingJSDoc(n, src),
		Parent:    parent,
		Calls:     dedupSortedCalls(calls),
	}
}

func buildJSClass(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChildByType(n, "class_body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			switch m.Type() {
			case "method_definition":
				children = append(children, buildJSMethod(m, src, name))
			case "public_field_definition", "field_definition":
				fid := findChildByField(m, "property")
				if fid == nil {
					fid = findChild(m, "property_identifier")
				}
				if fid != nil {
					fl, fc := pointOf(m)
					fel, fec := endPointOf(m)
					children = append(children, model.SymbolNode{Name: nodeContent(fid, src), Kind: model.KindProperty, Line: fl, Column: fc, EndLine: fel, EndColumn: fec, Parent: name})
				}
			}
		}
	}
	return model.SymbolNode{
		Name: name, Kind: model.KindClass,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Docstring: leadingJSDoc(n, src),
		Parent:    parent,
		Children:  children,
	}
}

func buildJSMethod(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	nameNode := findChildByType(n, "property_identifier")
	name := nodeContent(nameNode, src)
	kind := model.KindMethod
	if name == "constructor" {
		kind = model.KindConstructor
	}
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var calls []string
	if body := findChildByField(n, "body"); body != nil {
		calls = collectJSCalls(body, src)
	}
	return model.SymbolNode{
		Name: name, Kind: kind,
		Line: line, Column: col, EndLine: endLine, EndColumn: endCol,
		Signature: jsSignature(n, src),
		Docstring: leadingJSDoc(n, src),
		Parent:    parent,
		Calls:     dedupSortedCalls(calls),
	}
}

func buildJSInterface(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "interface_body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() == "method_signature" || m.Type() == "property_signature" {
				nm := findChildByType(m, "property_identifier")
				kind := model.KindProperty
				if m.Type() == "method_signature" {
					kind = model.KindMethod
				}
				ml, mc := pointOf(m)
				mel, mec := endPointOf(m)
				children = append(children, model.SymbolNode{Name: nodeContent(nm, src), Kind: kind, Line: ml, Column: mc, EndLine: mel, EndColumn: mec, Parent: name})
			}
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindInterface, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent, Children: children}
}

func buildJSEnum(n *sitter.Node, src []byte, parent string) model.SymbolNode {
	name := declName(n, src)
	line, col := pointOf(n)
	endLine, endCol := endPointOf(n)
	var children []model.SymbolNode
	if body := findChild(n, "enum_body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			m := body.Child(i)
			if m.Type() == "property_identifier" || m.Type() == "enum_assignment" {
				ml, mc := pointOf(m)
				mel, mec := endPointOf(m)
				children = append(children, model.SymbolNode{Name: nodeContent(m, src), Kind: model.KindEnumMember, Line: ml, Column: mc, EndLine: mel, EndColumn: mec, Parent: name})
			}
		}
	}
	return model.SymbolNode{Name: name, Kind: model.KindEnum, Line: line, Column: col, EndLine: endLine, EndColumn: endCol, Parent: parent, Children: children}
}

func leadingJSDoc(n *sitter.Node, src []byte) string {
	prev := n.PrevSibling()
	if prev != nil && prev.Type() == "comment" {
		c := strings.TrimSpace(nodeContent(prev, src))
		c = strings.TrimPrefix(c, "/**")
		c = strings.TrimPrefix(c, "/*")
		c = strings.TrimSuffix(c, "*/")
		return strings.TrimSpace(c)
	}
	return ""
}

// collectJSCalls walks a body collecting call targets, stopping at nested
// function/class/method boundaries (those collect their own calls when
// built as separate SymbolNodes).
func collectJSCalls(n *sitter.Node, src []byte) []string {
	var out []string
	var walk func(n *sitter.Node, top bool)
	walk = func(n *sitter.Node, top bool) {
		if !top {
			switch n.Type() {
			case "function_declaration", "function", "class_declaration", "method_definition":
				return
			}
		}
		if n.Type() == "call_expression" {
			if callee := n.Child(0); callee != nil {
				out = append(out, jsCallTargets(callee, src)...)
			}
		}
		if n.Type() == "new_expression" {
			if ctor := findChildByField(n, "constructor"); ctor != nil {
				out = append(out, nodeContent(ctor, src))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(n, true)
	return out
}

func jsCallTargets(n *sitter.Node, src []byte) []string {
	switch n.Type() {
	case "identifier":
		return []string{nodeContent(n, src)}
	case "member_expression":
		full := nodeContent(n, src)
		method := full
		if idx := strings.LastIndex(full, "."); idx >= 0 {
			method = full[idx+1:]
		}
		recv := findChildByField(n, "object")
		if recv != nil && recv.Type() == "identifier" && nodeContent(recv, src) == "this" {
			return []string{method}
		}
		if recv != nil && recv.Type() == "identifier" {
			return []string{method, full}
		}
		// nested member chain (a.b.c()): record only the method name.
		return []string{method}
	case "await_expression":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == "call_expression" {
				if callee := c.Child(0); callee != nil {
					return jsCallTargets(callee, src)
				}
			}
		}
	}
	return nil
}
