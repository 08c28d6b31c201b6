// Package repomap generates repository maps: symbols extracted from a
// repository snapshot, ranked by PageRank over a heuristic dependency
// graph, and rendered as a compact text map.
package repomap

import (
	"strings"

	"ghscout/internal/graph"
	"ghscout/internal/parser"
)

// RepoSymbol is a parsed symbol tagged with the file it came from.
type RepoSymbol struct {
	parser.Symbol
	Path string `json:"path"`
}

// Edge weights for the dependency graph. Calls outweigh imports; a method
// binds tightest to its class.
const (
	importEdgeWeight      = 1.0
	callEdgeWeight        = 2.0
	containmentEdgeWeight = 3.0
)

// BuildGraph builds the directed dependency graph over symbol names.
// Nodes are symbol names, so same-named symbols from different files
// collapse into one node. That keeps widely-used names ranked high.
func BuildGraph(symbols []RepoSymbol, imports []string, calls []string) *graph.Graph {
	g := graph.NewGraph()

	for _, s := range symbols {
		g.AddNode(s.Name)
	}

	// Call edges. The caller is unknown, so assume any symbol could be
	// the caller and fan in from all of them.
	for _, call := range calls {
		parts := strings.Split(call, ".")
		callName := parts[len(parts)-1]

		for _, s := range symbols {
			if s.Name != callName {
				continue
			}
			for _, other := range symbols {
				if other.Name == s.Name {
					continue
				}
				if !g.HasEdge(other.Name, s.Name) {
					g.AddEdge(other.Name, s.Name, callEdgeWeight, "call")
				}
			}
		}
	}

	// Imported symbols get a self-loop so some rank mass sticks to them.
	for _, stmt := range imports {
		for _, name := range ExtractImportedNames(stmt) {
			for _, s := range symbols {
				if s.Name == name {
					g.AddEdge(s.Name, s.Name, importEdgeWeight, "import")
				}
			}
		}
	}

	// Methods feed rank into their class.
	classNames := make(map[string]bool)
	for _, s := range symbols {
		if s.Kind == "class" {
			classNames[s.Name] = true
		}
	}
	for _, s := range symbols {
		if s.Kind != "method" {
			continue
		}
		if idx := strings.Index(s.Name, "."); idx > 0 {
			className := s.Name[:idx]
			if classNames[className] {
				g.AddEdge(s.Name, className, containmentEdgeWeight, "containment")
			}
		}
	}

	return g
}

// ExtractImportedNames extracts symbol names from a source import
// statement. Only the Python "from X import a, b as c" and
// "import x.y as z" forms are understood; anything else yields nothing.
func ExtractImportedNames(stmt string) []string {
	var names []string

	switch {
	case strings.HasPrefix(stmt, "from"):
		// from module import name1, name2 as alias
		idx := strings.Index(stmt, " import ")
		if idx < 0 {
			return names
		}
		for _, imp := range strings.Split(stmt[idx+len(" import "):], ",") {
			name := strings.TrimSpace(strings.SplitN(strings.TrimSpace(imp), " as ", 2)[0])
			if name != "" {
				names = append(names, name)
			}
		}
	case strings.HasPrefix(stmt, "import"):
		// import module.path as alias
		rest := strings.ReplaceAll(stmt, "import ", "")
		for _, part := range strings.Split(rest, ",") {
			name := strings.TrimSpace(strings.SplitN(strings.TrimSpace(part), " as ", 2)[0])
			if dot := strings.LastIndex(name, "."); dot >= 0 {
				name = name[dot+1:]
			}
			if name != "" {
				names = append(names, name)
			}
		}
	}

	return names
}
