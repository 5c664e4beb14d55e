package indexservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/index"
	"github.com/ooker777/breadcrumbs/internal/outline"
	"github.com/ooker777/breadcrumbs/internal/testutil"
)

type fakeSource struct {
	h       *graph.Hierarchy
	aliases map[string]outline.AliasFields
	err     error
}

func (f *fakeSource) Hierarchy() (*graph.Hierarchy, error) {
	return f.h, f.err
}

func (f *fakeSource) Lookup(label string) (outline.AliasFields, bool) {
	a, ok := f.aliases[label]
	return a, ok
}

func newService(src Source, maxSteps int) *Service {
	return New(src, maxSteps, slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// diamond is A→B, A→C, B→D, C→D declared as down links.
func diamond() *graph.Hierarchy {
	h := graph.New()
	h.AddEdge("A", "B", graph.Down)
	h.AddEdge("A", "C", graph.Down)
	h.AddEdge("B", "D", graph.Down)
	h.AddEdge("C", "D", graph.Down)
	return h
}

func TestLocalIndex_Diamond(t *testing.T) {
	svc := newService(&fakeSource{h: diamond()}, 0)
	res, err := svc.LocalIndex(context.Background(), "A", Options{})
	if err != nil {
		t.Fatalf("LocalIndex: %v", err)
	}
	if want := "- D\n  - B\n  - C\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if res.Paths != 2 || res.Truncated {
		t.Errorf("paths = %d truncated = %v", res.Paths, res.Truncated)
	}
	if res.BuildID == "" {
		t.Error("missing build id")
	}
}

func TestLocalIndex_UsesImpliedEdges(t *testing.T) {
	// Children only declare their parent; the closed graph supplies the downs.
	h := graph.New()
	h.AddEdge("Kid", "Parent", graph.Up)
	h.AddEdge("Grandkid", "Kid", graph.Up)

	svc := newService(&fakeSource{h: h}, 0)
	res, err := svc.LocalIndex(context.Background(), "[[Parent]]", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "- Grandkid\n  - Kid\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestLocalIndex_WikilinksAndAliases(t *testing.T) {
	src := &fakeSource{
		h: diamond(),
		aliases: map[string]outline.AliasFields{
			"[[D]]": {Alias: []string{"Foo"}, Aliases: []string{"Bar", "Baz"}},
		},
	}
	svc := newService(src, 0)
	res, err := svc.LocalIndex(context.Background(), "A", Options{Wikilinks: true, Aliases: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := "- [[D]] (Foo, Bar, Baz)\n  - [[B]]\n  - [[C]]\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestLocalIndex_UnknownNoteIsEmpty(t *testing.T) {
	svc := newService(&fakeSource{h: diamond()}, 0)
	res, err := svc.LocalIndex(context.Background(), "Nowhere", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "" || res.Paths != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
}

func TestLocalIndex_Errors(t *testing.T) {
	svc := newService(&fakeSource{h: diamond()}, 0)
	if _, err := svc.LocalIndex(context.Background(), "  ", Options{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank note err = %v, want ErrInvalidInput", err)
	}

	boom := errors.New("boom")
	svc = newService(&fakeSource{err: boom}, 0)
	if _, err := svc.LocalIndex(context.Background(), "A", Options{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc = newService(&fakeSource{h: diamond()}, 0)
	if _, err := svc.LocalIndex(ctx, "A", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLocalIndex_CycleIsTruncated(t *testing.T) {
	h := graph.New()
	h.AddEdge("A", "B", graph.Down)
	h.AddEdge("B", "A", graph.Down)

	svc := newService(&fakeSource{h: h}, 50)
	done := make(chan *Result, 1)
	go func() {
		res, _ := svc.LocalIndex(context.Background(), "A", Options{})
		done <- res
	}()
	select {
	case res := <-done:
		if res == nil || !res.Truncated {
			t.Errorf("res = %+v, want truncated", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cyclic traversal did not stop")
	}
}

func TestGlobalIndex_Diamond(t *testing.T) {
	svc := newService(&fakeSource{h: diamond()}, 0)
	res, err := svc.GlobalIndex(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "A\n- D\n  - B\n  - C\n\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if len(res.Sinks) != 1 || res.Sinks[0] != "A" {
		t.Errorf("sinks = %v", res.Sinks)
	}
}

func twoRoots() *graph.Hierarchy {
	h := graph.New()
	h.AddEdge("R1", "X", graph.Down)
	h.AddEdge("R2", "X", graph.Down)
	return h
}

func TestGlobalIndex_Scope(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{ScopeTraversal, "R1\n- X\n\nR2\n- X\n\n"},
		{ScopeGlobal, "R1\n- X\n\nR2\n\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			svc := newService(&fakeSource{h: twoRoots()}, 0)
			res, err := svc.GlobalIndex(context.Background(), Options{Scope: tt.scope})
			if err != nil {
				t.Fatal(err)
			}
			if res.Text != tt.want {
				t.Errorf("text = %q, want %q", res.Text, tt.want)
			}
		})
	}
}

func TestGlobalIndex_EmptyHierarchy(t *testing.T) {
	svc := newService(&fakeSource{h: graph.New()}, 0)
	res, err := svc.GlobalIndex(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "" || len(res.Sinks) != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
}

func TestParseIndex(t *testing.T) {
	svc := newService(&fakeSource{h: graph.New()}, 0)
	got := svc.ParseIndex(context.Background(), "- A\n  - B\n\n", false)
	want := []outline.LinePair{{Prefix: "", Label: "A"}, {Prefix: "  ", Label: "B"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("pairs = %+v, want %+v", got, want)
	}
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeTraversal, "traversal": ScopeTraversal, "GLOBAL": ScopeGlobal} {
		got, err := ParseScope(in)
		if err != nil || got != want {
			t.Errorf("ParseScope(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseScope("sideways"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

// The index DB is a Source: aliases resolve through wikilink labels.
func TestLocalIndex_OverIndexDB(t *testing.T) {
	db := testutil.TestDB(t)
	now := time.Now()
	_ = db.UpsertNote(index.NoteRow{Path: "Top.md", Name: "Top", Checksum: "1", UpdatedAt: now}, nil)
	_ = db.UpsertNote(index.NoteRow{Path: "sub/Leaf.md", Name: "Leaf", Checksum: "2", Aliases: []string{"Blatt"}, UpdatedAt: now},
		[]index.Link{{Target: "Mid", Type: index.LinkUp}})
	_ = db.UpsertNote(index.NoteRow{Path: "Mid.md", Name: "Mid", Checksum: "3", UpdatedAt: now},
		[]index.Link{{Target: "Top", Type: index.LinkUp}})

	svc := newService(db, 0)
	res, err := svc.LocalIndex(context.Background(), "Top", Options{Wikilinks: true, Aliases: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := "- [[Leaf]] (Blatt)\n  - [[Mid]]\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}

	g, err := svc.GlobalIndex(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "Top\n- Leaf\n  - Mid\n\n"; g.Text != want {
		t.Errorf("global = %q, want %q", g.Text, want)
	}
}
