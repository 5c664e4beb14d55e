package api

import (
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/outline"
)

// IndexResponse is a rendered local or global index (aliased from the domain layer).
type IndexResponse = indexservice.Result

// ParseResponse wraps the line pairs of a parsed index.
type ParseResponse struct {
	Pairs []outline.LinePair `json:"pairs" validate:"required"`
}

// HierarchyResponse is the closed hierarchy graph.
type HierarchyResponse struct {
	Nodes []string     `json:"nodes" validate:"required"`
	Edges []graph.Edge `json:"edges" validate:"required"`
}

// NoteResponse describes a resolved note.
type NoteResponse struct {
	Path    string   `json:"path" example:"people/Ada.md" validate:"required"`
	Name    string   `json:"name" example:"Ada" validate:"required"`
	Title   string   `json:"title,omitempty" example:"Ada Lovelace"`
	Aliases []string `json:"aliases" example:"Countess of Lovelace"`
}
