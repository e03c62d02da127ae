package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/chordanalyzr/internal/chordservice"
	"github.com/starford/chordanalyzr/internal/metrics"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// m, if non-nil, receives per-query counters.
func NewRouter(svc *chordservice.Service, authEnabled bool, token string, m *metrics.Metrics) chi.Router {
	h := NewHandler(svc, m)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/modes", h.ListModes)
	r.Get("/chord-types", h.ListChordTypes)

	// Scales and chord relations.
	r.Get("/scales", h.Scales)
	r.Get("/chords", h.Chords)

	return r
}
