package outline

import "strings"

// Indent is the per-depth indentation unit of an outline line.
const Indent = "  "

// Separator sits between the indentation and the label of every line.
const Separator = "- "

// LabelFunc transforms a node label before it is written.
type LabelFunc func(label string) string

// WikiLink wraps label in double brackets.
func WikiLink(label string) string {
	return "[[" + label + "]]"
}

// VisitedSet records the depths at which each node has been emitted.
type VisitedSet map[string]map[int]struct{}

// Has reports whether node was emitted at depth.
func (v VisitedSet) Has(node string, depth int) bool {
	_, ok := v[node][depth]
	return ok
}

// Add marks node as emitted at depth.
func (v VisitedSet) Add(node string, depth int) {
	depths, ok := v[node]
	if !ok {
		depths = make(map[int]struct{})
		v[node] = depths
	}
	depths[depth] = struct{}{}
}

// Builder merges normalized paths into outline text. The visited set lives as
// long as the Builder, so consecutive Write calls deduplicate against each other.
type Builder struct {
	visited  VisitedSet
	decorate LabelFunc
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDecorator renders every label through fn.
func WithDecorator(fn LabelFunc) BuilderOption {
	return func(b *Builder) {
		b.decorate = fn
	}
}

// NewBuilder creates a Builder with an empty visited set.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{visited: make(VisitedSet)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write emits one line per (node, depth) pair not seen before, walking paths
// in order and each path by index. A seen pair skips only that element; the
// rest of the path is still considered.
func (b *Builder) Write(paths []Path) string {
	var sb strings.Builder
	for _, p := range paths {
		for depth, node := range p {
			if b.visited.Has(node, depth) {
				continue
			}
			label := node
			if b.decorate != nil {
				label = b.decorate(node)
			}
			sb.WriteString(strings.Repeat(Indent, depth))
			sb.WriteString(Separator)
			sb.WriteString(label)
			sb.WriteString("\n")
			b.visited.Add(node, depth)
		}
	}
	return sb.String()
}

// Seen reports whether node has been emitted at depth by this Builder.
func (b *Builder) Seen(node string, depth int) bool {
	return b.visited.Has(node, depth)
}

// Len returns the number of distinct (node, depth) pairs emitted so far.
func (b *Builder) Len() int {
	n := 0
	for _, depths := range b.visited {
		n += len(depths)
	}
	return n
}

// Build merges paths into a single outline with a fresh visited set. When
// renderAsLink is set, labels are written as wiki links.
func Build(paths []Path, renderAsLink bool) string {
	var opts []BuilderOption
	if renderAsLink {
		opts = append(opts, WithDecorator(WikiLink))
	}
	return NewBuilder(opts...).Write(paths)
}
