package outline

import (
	"reflect"
	"strings"
	"testing"
)

// mapGraph is an adjacency map; every node, leaves included, must be a key.
type mapGraph map[string][]string

func (g mapGraph) HasNode(id string) bool {
	_, ok := g[id]
	return ok
}

func (g mapGraph) Successors(id string) []string {
	return g[id]
}

// graphOf builds a mapGraph from "A>B" edge specs.
func graphOf(edges ...string) mapGraph {
	g := mapGraph{}
	for _, e := range edges {
		from, to, _ := strings.Cut(e, ">")
		g[from] = append(g[from], to)
		if _, ok := g[to]; !ok {
			g[to] = nil
		}
	}
	return g
}

func TestEnumerate_Diamond(t *testing.T) {
	g := graphOf("A>B", "A>C", "B>D", "C>D")
	got := Enumerate(g, "A")
	want := []Path{{"A", "B", "D"}, {"A", "C", "D"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestEnumerate_MissingStart(t *testing.T) {
	g := graphOf("A>B")
	if got := Enumerate(g, "Z"); len(got) != 0 {
		t.Errorf("expected no paths for missing start, got %v", got)
	}
}

func TestEnumerate_StartIsLeaf(t *testing.T) {
	g := graphOf("A>B")
	got := Enumerate(g, "B")
	if len(got) != 1 || !reflect.DeepEqual(got[0], Path{"B"}) {
		t.Errorf("paths = %v, want [[B]]", got)
	}
}

func TestEnumerate_MultipleRoutesToSameLeaf(t *testing.T) {
	// Two routes to E plus a direct leaf C.
	g := graphOf("A>B", "A>C", "B>D", "B>E", "D>E")
	got := Enumerate(g, "A")
	want := []Path{
		{"A", "B", "D", "E"},
		{"A", "B", "E"},
		{"A", "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestEnumerate_PathsAreIndependent(t *testing.T) {
	g := graphOf("A>B", "A>C")
	got := Enumerate(g, "A")
	got[0][1] = "X"
	if got[1][1] != "C" {
		t.Errorf("paths share storage: %v", got)
	}
}

func TestEnumerateLimit_Truncates(t *testing.T) {
	g := graphOf("A>B", "B>A")
	paths, truncated := EnumerateLimit(g, "A", 50)
	if !truncated {
		t.Fatal("expected cyclic walk to exhaust the budget")
	}
	if len(paths) != 0 {
		t.Errorf("a pure cycle has no leaves, got %v", paths)
	}
}

func TestEnumerateLimit_WithinBudget(t *testing.T) {
	g := graphOf("A>B", "A>C")
	paths, truncated := EnumerateLimit(g, "A", 100)
	if truncated {
		t.Error("small graph should not hit the budget")
	}
	if len(paths) != 2 {
		t.Errorf("len(paths) = %d, want 2", len(paths))
	}
}

func TestNormalize(t *testing.T) {
	in := Path{"A", "B", "D"}
	got := Normalize(in)
	if !reflect.DeepEqual(got, Path{"D", "B"}) {
		t.Errorf("Normalize = %v, want [D B]", got)
	}
	if !reflect.DeepEqual(in, Path{"A", "B", "D"}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestNormalize_SingleNode(t *testing.T) {
	got := Normalize(Path{"A"})
	if got == nil || len(got) != 0 {
		t.Errorf("Normalize([A]) = %#v, want empty path", got)
	}
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	got := NormalizeAll([]Path{{"A", "B", "D"}, {"A", "C", "D"}, {"A"}})
	want := []Path{{"D", "B"}, {"D", "C"}, {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll = %v, want %v", got, want)
	}
}
