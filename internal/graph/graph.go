// Package graph provides the weighted symbol graph and the PageRank
// computation used to rank symbols by importance.
package graph

// Edge represents a directed edge in the symbol graph.
type Edge struct {
	From   string  // Source node ID
	To     string  // Target node ID
	Weight float64 // Edge weight (> 0)
	Kind   string  // Edge kind: "call", "import", "containment"
}

// Graph represents a sparse directed weighted graph. Node IDs are symbol
// names; callers that add the same name twice get the same node.
type Graph struct {
	nodes    []string
	nodeIdx  map[string]int
	numNodes int

	// Adjacency list: outEdges[i] = list of (neighbor_idx, weight)
	outEdges [][]edgeEntry

	// Edge metadata
	edgeKinds map[string]map[string]string // from -> to -> kind
}

type edgeEntry struct {
	target int
	weight float64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make([]string, 0),
		nodeIdx:   make(map[string]int),
		outEdges:  make([][]edgeEntry, 0),
		edgeKinds: make(map[string]map[string]string),
	}
}

// AddNode adds a node if it doesn't exist, returns its index.
func (g *Graph) AddNode(id string) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.nodeIdx[id] = idx
	g.outEdges = append(g.outEdges, nil)
	g.numNodes++
	return idx
}

// AddEdge adds a directed edge from src to dst, creating missing nodes.
// Re-adding an existing edge replaces its weight and kind.
func (g *Graph) AddEdge(src, dst string, weight float64, kind string) {
	srcIdx := g.AddNode(src)
	dstIdx := g.AddNode(dst)

	replaced := false
	for i, e := range g.outEdges[srcIdx] {
		if e.target == dstIdx {
			g.outEdges[srcIdx][i].weight = weight
			replaced = true
			break
		}
	}
	if !replaced {
		g.outEdges[srcIdx] = append(g.outEdges[srcIdx], edgeEntry{target: dstIdx, weight: weight})
	}

	if g.edgeKinds[src] == nil {
		g.edgeKinds[src] = make(map[string]string)
	}
	g.edgeKinds[src][dst] = kind
}

// HasEdge reports whether a directed edge from src to dst exists.
func (g *Graph) HasEdge(src, dst string) bool {
	m, ok := g.edgeKinds[src]
	if !ok {
		return false
	}
	_, ok = m[dst]
	return ok
}

// HasNode checks if a node exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIdx[id]
	return ok
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return g.numNodes
}

// NumEdges returns the total number of edges.
func (g *Graph) NumEdges() int {
	total := 0
	for _, edges := range g.outEdges {
		total += len(edges)
	}
	return total
}

// AllNodes returns all node IDs in insertion order.
func (g *Graph) AllNodes() []string {
	return g.nodes
}

// GetEdgeKind returns the kind of edge between two nodes, or "".
func (g *Graph) GetEdgeKind(from, to string) string {
	if m, ok := g.edgeKinds[from]; ok {
		return m[to]
	}
	return ""
}

// Neighbors returns the outgoing neighbors of a node.
func (g *Graph) Neighbors(id string) []string {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}

	neighbors := make([]string, len(g.outEdges[idx]))
	for i, e := range g.outEdges[idx] {
		neighbors[i] = g.nodes[e.target]
	}
	return neighbors
}
