package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ooker777/breadcrumbs/internal/indexservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// defaults are the index options used when a request does not override them.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *indexservice.Service, notes Resolver, defaults indexservice.Options, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, notes, defaults)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/index", func(r chi.Router) {
		r.Get("/local", h.LocalIndex)
		r.Get("/global", h.GlobalIndex)
		r.Post("/parse", h.ParseIndex)
	})

	r.Get("/hierarchy", h.Hierarchy)
	r.Get("/notes/resolve", h.ResolveNote)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
