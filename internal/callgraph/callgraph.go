// Package callgraph derives forward/reverse call views from the calls
// lists already attached to each model.SymbolNode, and answers
// outgoing/incoming/chain queries over them. The graph is approximate:
// call names are shape-based (no overload resolution), so distinct
// symbols sharing a name collapse into one node.
package callgraph

import (
	"sort"
	"strconv"

	"github.com/randalmurphal/code-indexer/internal/model"
)

// Node is one caller in the graph: its qualified or plain name, the file
// it was declared in, its declaration line, and the names it calls.
type Node struct {
	Name  string
	File  string
	Line  int
	Calls []string
}

// Caller identifies a symbol that calls a given target.
type Caller struct {
	Name string
	File string
	Line int
}

// Graph is a derived, read-only view built once per loaded index.
type Graph struct {
	// nodesByName holds every node whose name matches, in insertion
	// order (top-level symbols of all files, then nested children),
	// supporting the "first symbol that matches" lookup rule for Outgoing.
	nodesByName map[string][]Node
	order       []string // insertion order of distinct names, for tie-breaks
}

// Build walks every file's symbol tree (including nested children) and
// records one Node per symbol, keyed by both its plain name and its
// dot-joined qualified name, matching the Outgoing "search all files,
// then nested children" lookup rule.
func Build(idx *model.ProjectIndex) *Graph {
	g := &Graph{nodesByName: make(map[string][]Node)}

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for _, sym := range idx.Files[path].Symbols {
			g.addNode(Node{Name: sym.Name, File: path, Line: sym.Line, Calls: sym.Calls})
		}
	}
	for _, path := range paths {
		var walk func(nodes []model.SymbolNode, qualified string)
		walk = func(nodes []model.SymbolNode, qualified string) {
			for _, sym := range nodes {
				qname := sym.Name
				if qualified != "" {
					qname = qualified + "." + sym.Name
				}
				node := Node{Name: sym.Name, File: path, Line: sym.Line, Calls: sym.Calls}
				g.addNode(node)
				if qname != sym.Name {
					qnode := node
					qnode.Name = qname
					g.addNode(qnode)
				}
				if len(sym.Children) > 0 {
					walk(sym.Children, qname)
				}
			}
		}
		for _, sym := range idx.Files[path].Symbols {
			if len(sym.Children) > 0 {
				walk(sym.Children, sym.Name)
			}
		}
	}
	return g
}

func (g *Graph) addNode(n Node) {
	if _, seen := g.nodesByName[n.Name]; !seen {
		g.order = append(g.order, n.Name)
	}
	g.nodesByName[n.Name] = append(g.nodesByName[n.Name], n)
}

// Outgoing returns the calls list for the first symbol matching name,
// searching top-level symbols of all files before nested children.
func (g *Graph) Outgoing(name string) ([]string, bool) {
	nodes, ok := g.nodesByName[name]
	if !ok || len(nodes) == 0 {
		return nil, false
	}
	return nodes[0].Calls, true
}

// Incoming scans every node for one whose Calls includes target. A symbol
// recorded under both its plain and qualified name (any nested
// method/function) is reported once, keyed by (File, Line); the more
// descriptive (longest) name wins.
func (g *Graph) Incoming(target string) []Caller {
	byKey := make(map[string]Caller)
	var order []string
	for _, name := range g.order {
		for _, n := range g.nodesByName[name] {
			matched := false
			for _, c := range n.Calls {
				if c == target {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			key := n.File + ":" + strconv.Itoa(n.Line)
			existing, seen := byKey[key]
			if !seen {
				order = append(order, key)
				byKey[key] = Caller{Name: n.Name, File: n.File, Line: n.Line}
				continue
			}
			if len(n.Name) > len(existing.Name) {
				byKey[key] = Caller{Name: n.Name, File: n.File, Line: n.Line}
			}
		}
	}
	out := make([]Caller, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}

// Chain performs a breadth-first search over the outgoing-calls map from
// source to target with a maximum depth, exploring the full frontier at
// each level before giving up and breaking ties by insertion order. It
// returns the first path found, or (nil, false).
func (g *Graph) Chain(source, target string, maxDepth int) ([]string, bool) {
	if source == target {
		return []string{source}, true
	}

	type queued struct {
		name string
		path []string
	}
	visited := map[string]bool{source: true}
	queue := []queued{{name: source, path: []string{source}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []queued
		for _, q := range queue {
			calls, _ := g.Outgoing(q.name)
			for _, callee := range calls {
				if visited[callee] {
					continue
				}
				visited[callee] = true
				path := append(append([]string{}, q.path...), callee)
				if callee == target {
					return path, true
				}
				next = append(next, queued{name: callee, path: path})
			}
		}
		queue = next
	}
	return nil, false
}
