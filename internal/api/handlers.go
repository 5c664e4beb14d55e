package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ooker777/breadcrumbs/internal/apperr"
	"github.com/ooker777/breadcrumbs/internal/graph"
	"github.com/ooker777/breadcrumbs/internal/index"
	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/outline"
)

const maxParseBody = 10 << 20

// Resolver looks a note up by link or name.
type Resolver interface {
	Resolve(link string) (*index.NoteRow, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc      *indexservice.Service
	notes    Resolver
	defaults indexservice.Options
}

// NewHandler creates a new Handler.
func NewHandler(svc *indexservice.Service, notes Resolver, defaults indexservice.Options) *Handler {
	return &Handler{svc: svc, notes: notes, defaults: defaults}
}

// options applies the wikilinks, aliases, and scope query parameters on top
// of the configured defaults.
func (h *Handler) options(q url.Values) (indexservice.Options, error) {
	opts := h.defaults
	for name, dst := range map[string]*bool{"wikilinks": &opts.Wikilinks, "aliases": &opts.Aliases} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: %s must be a boolean", apperr.ErrInvalidInput, name)
		}
		*dst = v
	}
	if raw := q.Get("scope"); raw != "" {
		s, err := indexservice.ParseScope(raw)
		if err != nil {
			return opts, err
		}
		opts.Scope = s
	}
	return opts, nil
}

// LocalIndex handles GET /api/index/local.
//
//	@Summary		Build the index below one note
//	@Tags			index
//	@Produce		json
//	@Param			note		query		string	true	"Note name or [[link]]"
//	@Param			wikilinks	query		bool	false	"Render labels as wikilinks"
//	@Param			aliases		query		bool	false	"Append note aliases"
//	@Param			format		query		string	false	"Response format"	Enums(json, text)
//	@Success		200			{object}	IndexResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index/local [get]
func (h *Handler) LocalIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	note := q.Get("note")
	if note == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'note' is required"))
		return
	}
	opts, err := h.options(q)
	if err != nil {
		writeError(w, "local index", err)
		return
	}
	res, err := h.svc.LocalIndex(r.Context(), note, opts)
	if err != nil {
		writeError(w, "local index", err)
		return
	}
	writeIndex(w, r, res)
}

// GlobalIndex handles GET /api/index/global.
//
//	@Summary		Build the index of every top-level note
//	@Tags			index
//	@Produce		json
//	@Param			wikilinks	query		bool	false	"Render labels as wikilinks"
//	@Param			aliases		query		bool	false	"Append note aliases"
//	@Param			scope		query		string	false	"Deduplication scope"	Enums(traversal, global)
//	@Param			format		query		string	false	"Response format"		Enums(json, text)
//	@Success		200			{object}	IndexResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index/global [get]
func (h *Handler) GlobalIndex(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r.URL.Query())
	if err != nil {
		writeError(w, "global index", err)
		return
	}
	res, err := h.svc.GlobalIndex(r.Context(), opts)
	if err != nil {
		writeError(w, "global index", err)
		return
	}
	writeIndex(w, r, res)
}

// ParseIndex handles POST /api/index/parse.
//
//	@Summary		Split index text into prefix/label pairs
//	@Tags			index
//	@Accept			plain
//	@Produce		json
//	@Param			flat	query		bool	false	"Drop indentation prefixes"
//	@Success		200		{object}	ParseResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/index/parse [post]
func (h *Handler) ParseIndex(w http.ResponseWriter, r *http.Request) {
	flat := false
	if raw := r.URL.Query().Get("flat"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("flat must be a boolean"))
			return
		}
		flat = v
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	pairs := h.svc.ParseIndex(r.Context(), string(body), flat)
	if pairs == nil {
		pairs = []outline.LinePair{}
	}
	writeJSON(w, http.StatusOK, ParseResponse{Pairs: pairs})
}

// Hierarchy handles GET /api/hierarchy.
//
//	@Summary		Get the closed hierarchy graph
//	@Tags			hierarchy
//	@Produce		json
//	@Success		200	{object}	HierarchyResponse
//	@Security		BearerAuth
//	@Router			/hierarchy [get]
func (h *Handler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Hierarchy(r.Context())
	if err != nil {
		writeError(w, "hierarchy", err)
		return
	}
	resp := HierarchyResponse{Nodes: g.Nodes(), Edges: g.Edges()}
	if resp.Nodes == nil {
		resp.Nodes = []string{}
	}
	if resp.Edges == nil {
		resp.Edges = []graph.Edge{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResolveNote handles GET /api/notes/resolve.
//
//	@Summary		Resolve a link or name to a note
//	@Tags			notes
//	@Produce		json
//	@Param			link	query		string	true	"Note name or [[link]]"
//	@Success		200		{object}	NoteResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/resolve [get]
func (h *Handler) ResolveNote(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'link' is required"))
		return
	}
	n, err := h.notes.Resolve(link)
	if err != nil {
		writeError(w, "resolve note", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{
		Path:    n.Path,
		Name:    n.Name,
		Title:   n.Title,
		Aliases: outline.AliasFields{Alias: n.Alias, Aliases: n.Aliases}.Merged(),
	})
}
