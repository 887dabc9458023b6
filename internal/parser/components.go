package parser

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/randalmurphal/code-indexer/internal/model"
)

var httpMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true, "head": true, "options": true,
}

var fileRoutedMethods = map[string]bool{"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true}

// detectJSComponents classifies top-level declarations as view-framework
// components per §4.1's optional detection rule.
func detectJSComponents(root *sitter.Node, src []byte) []model.ComponentDecl {
	var out []model.ComponentDecl
	for i := 0; i < int(root.ChildCount()); i++ {
		n := unwrapExport(root.Child(i))
		if n == nil {
			continue
		}
		switch n.Type() {
		case "function_declaration":
			name := declName(n, src)
			if name == "" || !startsUpper(name) {
				continue
			}
			line, _ := pointOf(n)
			body := findChildByField(n, "body")
			if body != nil && !containsJSX(body) && !startsUpper(name) {
				continue
			}
			out = append(out, model.ComponentDecl{Name: name, Kind: "functional", Line: line, Hooks: collectHookNames(body, src)})
		case "class_declaration":
			name := declName(n, src)
			if heritage := findChildByType(n, "class_heritage"); heritage != nil {
				h := nodeContent(heritage, src)
				if strings.Contains(h, "Component") || strings.Contains(h, "PureComponent") {
					line, _ := pointOf(n)
					out = append(out, model.ComponentDecl{Name: name, Kind: "class", Line: line})
				}
			}
		case "lexical_declaration":
			for j := 0; j < int(n.ChildCount()); j++ {
				decl := n.Child(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				id := findChild(decl, "identifier")
				val := findChildByField(decl, "value")
				if id == nil || val == nil {
					continue
				}
				name := nodeContent(id, src)
				if val.Type() == "call_expression" {
					callee := val.Child(0)
					if callee == nil {
						continue
					}
					calleeName := nodeContent(callee, src)
					line, _ := pointOf(decl)
					switch {
					case calleeName == "forwardRef":
						out = append(out, model.ComponentDecl{Name: name, Kind: "forward-ref", Line: line})
					case calleeName == "memo":
						out = append(out, model.ComponentDecl{Name: name, Kind: "memo", Line: line})
					case strings.HasPrefix(calleeName, "with") && startsUpper(string(rune(calleeName[4]))):
						out = append(out, model.ComponentDecl{Name: name, Kind: "hoc", Line: line})
					}
				} else if startsUpper(name) && (val.Type() == "arrow_function" || val.Type() == "function") {
					line, _ := pointOf(decl)
					out = append(out, model.ComponentDecl{Name: name, Kind: "functional", Line: line, Hooks: collectHookNames(val, src)})
				}
			}
		}
	}
	return out
}

func unwrapExport(n *sitter.Node) *sitter.Node {
	if n.Type() != "export_statement" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() != "export" && c.Type() != "default" {
			return c
		}
	}
	return nil
}

func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return unicode.IsUpper(r)
}

func containsJSX(n *sitter.Node) bool {
	if n.Type() == "jsx_element" || n.Type() == "jsx_self_closing_element" || n.Type() == "jsx_fragment" {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsJSX(n.Child(i)) {
			return true
		}
	}
	return false
}

func collectHookNames(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if callee := n.Child(0); callee != nil && callee.Type() == "identifier" {
				name := nodeContent(callee, src)
				if strings.HasPrefix(name, "use") && len(name) > 3 {
					out = append(out, name)
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return dedupSortedCalls(out)
}

// detectJSEndpoints finds router-method-call sites per §4.1's optional
// HTTP endpoint detection rule.
func detectJSEndpoints(root *sitter.Node, src []byte, framework string) []model.EndpointDecl {
	var out []model.EndpointDecl
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if callee := findChildByType(n, "member_expression"); callee != nil {
				method := findChildByType(callee, "property_identifier")
				recv := findChildByField(callee, "object")
				if method != nil && recv != nil {
					methodName := strings.ToLower(nodeContent(method, src))
					if httpMethods[methodName] && isRouterReceiver(nodeContent(recv, src)) {
						out = append(out, buildEndpoint(n, src, methodName, framework))
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	for i := 0; i < int(root.ChildCount()); i++ {
		n := unwrapExport(root.Child(i))
		if n == nil || n.Type() != "function_declaration" {
			continue
		}
		name := declName(n, src)
		if fileRoutedMethods[name] {
			line, _ := pointOf(n)
			out = append(out, model.EndpointDecl{Method: name, Handler: name, Line: line, Framework: framework})
		}
	}
	return out
}

func isRouterReceiver(name string) bool {
	switch name {
	case "router", "app", "server":
		return true
	}
	return false
}

func buildEndpoint(call *sitter.Node, src []byte, method, framework string) model.EndpointDecl {
	line, _ := pointOf(call)
	args := findChildByField(call, "arguments")
	ep := model.EndpointDecl{Method: strings.ToUpper(method), Line: line, Framework: framework}
	if args == nil {
		return ep
	}
	var seenPath bool
	for i := 0; i < int(args.ChildCount()); i++ {
		a := args.Child(i)
		switch a.Type() {
		case "string":
			if !seenPath {
				ep.Path = stripQuotes(nodeContent(a, src))
				seenPath = true
			}
		case "identifier":
			ep.Middleware = append(ep.Middleware, nodeContent(a, src))
		case "arrow_function", "function":
			ep.Handler = handlerParamsFramework(a, src)
		}
	}
	if ep.Handler == "" && len(ep.Middleware) > 0 {
		ep.Handler = ep.Middleware[len(ep.Middleware)-1]
		ep.Middleware = ep.Middleware[:len(ep.Middleware)-1]
	}
	return ep
}

func handlerParamsFramework(fn *sitter.Node, src []byte) string {
	params := findChildByField(fn, "parameters")
	if params == nil {
		return "anonymous"
	}
	return "anonymous" + nodeContent(params, src)
}
