// Package outline turns hierarchy paths into an indented Markdown index and back.
//
// The pipeline is Enumerate → NormalizeAll → Build → Annotate. Parse reads an
// outline produced by Build (or written by hand) into prefix/label pairs.
// None of the functions here mutate their inputs or return errors; degenerate
// input degrades to smaller or empty output.
package outline

// Graph is the read-only view of a directed graph that path enumeration needs.
// Implementations are expected to be already filtered to one edge direction.
type Graph interface {
	HasNode(id string) bool
	Successors(id string) []string
}

// Path is an ordered sequence of node identifiers.
type Path []string

// Enumerate returns every route from start to a node without successors,
// each as a start-to-leaf path. An unknown start yields no paths.
//
// The graph must be acyclic along the traversed edges; otherwise Enumerate
// does not terminate. Use EnumerateLimit to bound the work.
func Enumerate(g Graph, start string) []Path {
	paths, _ := EnumerateLimit(g, start, 0)
	return paths
}

// EnumerateLimit is Enumerate with a budget of maxSteps node expansions.
// When the budget runs out the paths found so far are returned together with
// truncated=true. maxSteps <= 0 disables the budget.
func EnumerateLimit(g Graph, start string, maxSteps int) (paths []Path, truncated bool) {
	if g == nil || !g.HasNode(start) {
		return nil, false
	}
	e := &enumerator{g: g, budget: maxSteps}
	e.walk(Path{start})
	return e.paths, e.truncated
}

type enumerator struct {
	g         Graph
	budget    int
	steps     int
	truncated bool
	paths     []Path
}

func (e *enumerator) walk(current Path) {
	if e.truncated {
		return
	}
	if e.budget > 0 {
		if e.steps >= e.budget {
			e.truncated = true
			return
		}
		e.steps++
	}

	succs := e.g.Successors(current[len(current)-1])
	if len(succs) == 0 {
		p := make(Path, len(current))
		copy(p, current)
		e.paths = append(e.paths, p)
		return
	}
	for _, next := range succs {
		e.walk(append(current, next))
	}
}

// Normalize reverses p so it reads leaf-first and drops the original start
// node, which is implicit context rather than an outline line. A path of
// length one normalizes to an empty path. p itself is left untouched.
func Normalize(p Path) Path {
	if len(p) <= 1 {
		return Path{}
	}
	out := make(Path, 0, len(p)-1)
	for i := len(p) - 1; i > 0; i-- {
		out = append(out, p[i])
	}
	return out
}

// NormalizeAll applies Normalize to every path, preserving order.
func NormalizeAll(paths []Path) []Path {
	out := make([]Path, len(paths))
	for i, p := range paths {
		out[i] = Normalize(p)
	}
	return out
}
