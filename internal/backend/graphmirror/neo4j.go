// Package graphmirror optionally mirrors the dependency graph and call
// graph into Neo4j, where Impact offers a graph traversal over the
// mirrored import edges; the module's own deps/impact/calls queries are
// answered from the in-memory index and do not call it. The
// in-memory ProjectIndex remains authoritative; the mirror is rebuilt
// on reload and never consulted for correctness.
package graphmirror

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Node labels mirrored into the graph.
const (
	NodeFile   = "File"
	NodeSymbol = "Symbol"
)

// Relationship types mirrored into the graph.
const (
	RelImports = "IMPORTS"
	RelCalls   = "CALLS"
)

// File is one source file node.
type File struct {
	Path string
	Hash string
}

// Symbol is one function/method node.
type Symbol struct {
	Name      string
	Kind      string
	FilePath  string
	StartLine int
}

// Mirror wraps a Neo4j driver scoped to one project.
type Mirror struct {
	driver  neo4j.DriverWithContext
	project string
}

// New connects to Neo4j at uri and verifies connectivity.
func New(uri, username, password, project string) (*Mirror, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}

	return &Mirror{driver: driver, project: project}, nil
}

// Close closes the underlying driver.
func (m *Mirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

// EnsureSchema creates uniqueness constraints for the mirrored project.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT file_path IF NOT EXISTS FOR (f:File) REQUIRE (f.project, f.path) IS UNIQUE",
		"CREATE CONSTRAINT symbol_id IF NOT EXISTS FOR (s:Symbol) REQUIRE (s.project, s.file_path, s.name, s.start_line) IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}
	return nil
}

// ReplaceProject clears this project's mirrored nodes. Called before a
// full re-mirror on reload, since the graph mirror has no incremental
// update path of its own.
func (m *Mirror) ReplaceProject(ctx context.Context) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (n {project: $project})
		DETACH DELETE n
	`, map[string]interface{}{"project": m.project})
	return err
}

// UpsertFile creates or updates a file node.
func (m *Mirror) UpsertFile(ctx context.Context, f File) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (f:File {project: $project, path: $path})
		SET f.hash = $hash
	`, map[string]interface{}{
		"project": m.project,
		"path":    f.Path,
		"hash":    f.Hash,
	})
	return err
}

// UpsertSymbol creates or updates a symbol node and links it to its file.
func (m *Mirror) UpsertSymbol(ctx context.Context, s Symbol) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (s:Symbol {project: $project, file_path: $file_path, name: $name, start_line: $start_line})
		SET s.kind = $kind
		WITH s
		MATCH (f:File {project: $project, path: $file_path})
		MERGE (f)-[:CONTAINS]->(s)
	`, map[string]interface{}{
		"project":    m.project,
		"file_path":  s.FilePath,
		"name":       s.Name,
		"start_line": s.StartLine,
		"kind":       s.Kind,
	})
	return err
}

// LinkImport records that fromPath imports toPath.
func (m *Mirror) LinkImport(ctx context.Context, fromPath, toPath string) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (from:File {project: $project, path: $from})
		MATCH (to:File {project: $project, path: $to})
		MERGE (from)-[:IMPORTS]->(to)
	`, map[string]interface{}{
		"project": m.project,
		"from":    fromPath,
		"to":      toPath,
	})
	return err
}

// LinkCall records that the symbol at (callerFile, callerLine) calls
// any symbol named callee.
func (m *Mirror) LinkCall(ctx context.Context, callerFile string, callerLine int, callee string) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MATCH (caller:Symbol {project: $project, file_path: $file, start_line: $line})
		MATCH (callee:Symbol {project: $project, name: $callee})
		MERGE (caller)-[:CALLS]->(callee)
	`, map[string]interface{}{
		"project": m.project,
		"file":    callerFile,
		"line":    callerLine,
		"callee":  callee,
	})
	return err
}

// Impact returns file paths reachable by following IMPORTS edges
// backward from target, up to maxDepth hops.
func (m *Mirror) Impact(ctx context.Context, target string, maxDepth int) ([]string, error) {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (target:File {project: $project, path: $target})
		MATCH path = (dependent:File)-[:IMPORTS*1..`+depthLiteral(maxDepth)+`]->(target)
		RETURN DISTINCT dependent.path AS path
	`, map[string]interface{}{
		"project": m.project,
		"target":  target,
	})
	if err != nil {
		return nil, err
	}

	var paths []string
	for result.Next(ctx) {
		if p, ok := result.Record().Get("path"); ok {
			if s, ok := p.(string); ok {
				paths = append(paths, s)
			}
		}
	}
	return paths, nil
}

// depthLiteral renders a bounded hop count for variable-length pattern
// interpolation. Neo4j does not accept a parameter there, so the depth
// is clamped and inlined as a literal.
func depthLiteral(depth int) string {
	if depth < 1 {
		depth = 1
	}
	if depth > 50 {
		depth = 50
	}
	return fmt.Sprintf("%d", depth)
}
