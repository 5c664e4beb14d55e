// Package graph models the note hierarchy as a direction-labelled multigraph.
package graph

import "fmt"

// Direction is the hierarchical meaning of an edge.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Opposite returns the direction implied on the reverse edge.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("graph: unknown direction %q", s)
	}
}

// Edge is a directed hierarchy relation between two note names.
type Edge struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Dir    Direction `json:"dir"`
}

// Hierarchy is a multigraph of notes whose edges carry a Direction.
// Node and edge insertion order is preserved; duplicate edges are ignored.
// A Hierarchy is not safe for concurrent mutation.
type Hierarchy struct {
	order   []string
	nodes   map[string]struct{}
	edges   []Edge
	edgeSet map[Edge]struct{}
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		nodes:   make(map[string]struct{}),
		edgeSet: make(map[Edge]struct{}),
	}
}

// AddNode adds a node if it is not already present.
func (h *Hierarchy) AddNode(name string) {
	if _, ok := h.nodes[name]; ok {
		return
	}
	h.nodes[name] = struct{}{}
	h.order = append(h.order, name)
}

// AddEdge adds source→target in direction dir, creating missing nodes.
// Self-loops are dropped.
func (h *Hierarchy) AddEdge(source, target string, dir Direction) {
	if source == target {
		return
	}
	h.AddNode(source)
	h.AddNode(target)
	e := Edge{Source: source, Target: target, Dir: dir}
	if _, exists := h.edgeSet[e]; exists {
		return
	}
	h.edgeSet[e] = struct{}{}
	h.edges = append(h.edges, e)
}

// HasNode reports whether name is in the hierarchy.
func (h *Hierarchy) HasNode(name string) bool {
	_, ok := h.nodes[name]
	return ok
}

// Nodes returns node names in insertion order.
func (h *Hierarchy) Nodes() []string {
	return append([]string(nil), h.order...)
}

// Edges returns all edges in insertion order.
func (h *Hierarchy) Edges() []Edge {
	return append([]Edge(nil), h.edges...)
}

// Close returns a copy in which every edge also implies its reverse in the
// opposite direction: a note listing B as "up" makes A a "down" of B.
func (h *Hierarchy) Close() *Hierarchy {
	closed := New()
	for _, n := range h.order {
		closed.AddNode(n)
	}
	for _, e := range h.edges {
		closed.AddEdge(e.Source, e.Target, e.Dir)
		closed.AddEdge(e.Target, e.Source, e.Dir.Opposite())
	}
	return closed
}

// Sub returns the directed view containing only edges in dirs and only the
// nodes those edges touch.
func (h *Hierarchy) Sub(dirs ...Direction) *Directed {
	want := make(map[Direction]bool, len(dirs))
	for _, d := range dirs {
		want[d] = true
	}
	g := newDirected()
	for _, e := range h.edges {
		if want[e.Dir] {
			g.addEdge(e.Source, e.Target)
		}
	}
	return g
}
