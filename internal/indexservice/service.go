// Package indexservice builds local and global hierarchy indexes from the
// note index.
package indexservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/index"
	"github.com/ooker777/breadcrumbs/internal/metrics"
	"github.com/ooker777/breadcrumbs/internal/outline"
	"github.com/ooker777/breadcrumbs/internal/parser"
)

// Scope selects how far the visited set reaches in a global index.
type Scope string

const (
	// ScopeTraversal resets the visited set for every sink.
	ScopeTraversal Scope = "traversal"
	// ScopeGlobal shares one visited set across all sinks.
	ScopeGlobal Scope = "global"
)

// ParseScope validates s. An empty string selects ScopeTraversal.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeTraversal:
		return ScopeTraversal, nil
	case ScopeGlobal:
		return ScopeGlobal, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", apperr.ErrInvalidInput, s)
}

// Options control how an index is rendered.
type Options struct {
	Wikilinks bool  `json:"wikilinks"`
	Aliases   bool  `json:"aliases"`
	Scope     Scope `json:"scope,omitempty"`
}

// Result is a rendered index.
type Result struct {
	BuildID   string   `json:"build_id"`
	Note      string   `json:"note,omitempty"`
	Sinks     []string `json:"sinks,omitempty"`
	Text      string   `json:"text"`
	Paths     int      `json:"paths"`
	Truncated bool     `json:"truncated"`
}

// Source is the part of the note index the service reads.
type Source interface {
	Hierarchy() (*graph.Hierarchy, error)
	outline.AliasLookup
}

var _ Source = (index.NoteIndex)(nil)

// Service renders indexes over a Source.
type Service struct {
	src      Source
	maxSteps int
	logger   *slog.Logger
}

// New creates a Service. maxSteps bounds each traversal; 0 means unbounded.
func New(src Source, maxSteps int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, maxSteps: maxSteps, logger: logger}
}

// closed loads the hierarchy and adds implied opposite edges.
func (s *Service) closed() (*graph.Hierarchy, error) {
	h, err := s.src.Hierarchy()
	if err != nil {
		return nil, fmt.Errorf("indexservice: load hierarchy: %w", err)
	}
	metrics.SetHierarchyNodes(len(h.Nodes()))
	return h.Close(), nil
}

// Hierarchy returns the closed hierarchy.
func (s *Service) Hierarchy(_ context.Context) (*graph.Hierarchy, error) {
	return s.closed()
}

func (s *Service) builder(opts Options) *outline.Builder {
	if opts.Wikilinks {
		return outline.NewBuilder(outline.WithDecorator(outline.WikiLink))
	}
	return outline.NewBuilder()
}

// LocalIndex renders every downward path from note. An unknown note yields
// an empty index.
func (s *Service) LocalIndex(ctx context.Context, note string, opts Options) (_ *Result, err error) {
	start := time.Now()
	res := &Result{BuildID: uuid.NewString(), Note: parser.NoteName(note)}
	defer func() {
		metrics.ObserveBuild(metrics.KindLocal, time.Since(start), res.Paths, res.Truncated, err)
	}()
	if res.Note == "" {
		return nil, fmt.Errorf("%w: note is required", apperr.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := s.closed()
	if err != nil {
		return nil, err
	}
	paths, truncated := outline.EnumerateLimit(h.Sub(graph.Down), res.Note, s.maxSteps)
	res.Paths = len(paths)
	res.Truncated = truncated
	res.Text = outline.Annotate(s.builder(opts).Write(outline.NormalizeAll(paths)), s.src, opts.Aliases)

	s.logger.Info("index: local built",
		slog.String("build_id", res.BuildID),
		slog.String("note", res.Note),
		slog.Int("paths", res.Paths),
		slog.Bool("truncated", res.Truncated))
	return res, nil
}

// GlobalIndex renders, for every top-level note, its name followed by its
// local index and a blank line.
func (s *Service) GlobalIndex(ctx context.Context, opts Options) (_ *Result, err error) {
	start := time.Now()
	res := &Result{BuildID: uuid.NewString()}
	defer func() {
		metrics.ObserveBuild(metrics.KindGlobal, time.Since(start), res.Paths, res.Truncated, err)
	}()

	h, err := s.closed()
	if err != nil {
		return nil, err
	}
	down := h.Sub(graph.Down)
	res.Sinks = h.Sub(graph.Up).Sinks()

	var (
		sb     strings.Builder
		shared *outline.Builder
	)
	if opts.Scope == ScopeGlobal {
		shared = s.builder(opts)
	}
	for _, sink := range res.Sinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := shared
		if b == nil {
			b = s.builder(opts)
		}
		paths, truncated := outline.EnumerateLimit(down, sink, s.maxSteps)
		res.Paths += len(paths)
		res.Truncated = res.Truncated || truncated

		sb.WriteString(sink)
		sb.WriteString("\n")
		sb.WriteString(outline.Annotate(b.Write(outline.NormalizeAll(paths)), s.src, opts.Aliases))
		sb.WriteString("\n")
	}
	res.Text = sb.String()

	s.logger.Info("index: global built",
		slog.String("build_id", res.BuildID),
		slog.Int("sinks", len(res.Sinks)),
		slog.Int("paths", res.Paths),
		slog.Bool("truncated", res.Truncated))
	return res, nil
}

// ParseIndex splits index text back into prefix/label pairs.
func (s *Service) ParseIndex(_ context.Context, text string, flat bool) []outline.LinePair {
	start := time.Now()
	pairs := outline.Parse(text, flat)
	metrics.ObserveBuild(metrics.KindParse, time.Since(start), 0, false, nil)
	return pairs
}
