package graph

// Directed is a plain adjacency-list digraph, the single-direction view of a
// Hierarchy that traversals run on. It satisfies outline.Graph.
type Directed struct {
	order []string
	// Adjacency list: node -> successors in edge insertion order
	edges map[string][]string
	count int
}

func newDirected() *Directed {
	return &Directed{edges: make(map[string][]string)}
}

func (g *Directed) addNode(n string) {
	if _, ok := g.edges[n]; ok {
		return
	}
	g.edges[n] = nil
	g.order = append(g.order, n)
}

func (g *Directed) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	g.edges[from] = append(g.edges[from], to)
	g.count++
}

// HasNode reports whether n is in the graph.
func (g *Directed) HasNode(n string) bool {
	_, ok := g.edges[n]
	return ok
}

// Successors returns the nodes n points to.
func (g *Directed) Successors(n string) []string {
	return g.edges[n]
}

// Nodes returns all node IDs in insertion order.
func (g *Directed) Nodes() []string {
	return append([]string(nil), g.order...)
}

// OutDegree returns the number of outgoing edges from a node.
func (g *Directed) OutDegree(n string) int {
	return len(g.edges[n])
}

// NodeCount returns the number of nodes in the graph.
func (g *Directed) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges in the graph.
func (g *Directed) EdgeCount() int {
	return g.count
}

// Sinks returns the nodes without outgoing edges, in node order. On the "up"
// view these are the hierarchy roots.
func (g *Directed) Sinks() []string {
	var out []string
	for _, n := range g.order {
		if len(g.edges[n]) == 0 {
			out = append(out, n)
		}
	}
	return out
}
