package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/starford/chordanalyzr/internal/apperr"
	"github.com/starford/chordanalyzr/internal/chordservice"
	"github.com/starford/chordanalyzr/internal/metrics"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *chordservice.Service
	metrics *metrics.Metrics
}

// NewHandler creates a new Handler. m may be nil.
func NewHandler(svc *chordservice.Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

func (h *Handler) observe(op string, err error) {
	if h.metrics != nil {
		h.metrics.ObserveQuery(op, err)
	}
}

// ListModes handles GET /api/modes.
//
//	@Summary		List modes ordered by name
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	ModeDTO
//	@Security		BearerAuth
//	@Router			/modes [get]
func (h *Handler) ListModes(w http.ResponseWriter, r *http.Request) {
	writeCachedJSON(w, r, h.svc.ListModes(r.Context()))
}

// ListChordTypes handles GET /api/chord-types.
//
//	@Summary		List chord types ordered by name
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{array}	ChordTypeDTO
//	@Security		BearerAuth
//	@Router			/chord-types [get]
func (h *Handler) ListChordTypes(w http.ResponseWriter, r *http.Request) {
	writeCachedJSON(w, r, h.svc.ListChordTypes(r.Context()))
}

// Scales handles GET /api/scales.
//
//	@Summary		Spell the notes of a mode in a key
//	@Tags			scales
//	@Produce		json
//	@Param			mode	query		string	true	"Mode name"	example(Dorian)
//	@Param			key		query		string	true	"Key note name"	example(Eb)
//	@Success		200		{array}		ScaleNoteDTO
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scales [get]
func (h *Handler) Scales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := requireParams(q, "mode", "key"); err != nil {
		writeError(w, "scale lookup failed", err)
		return
	}

	notes, err := h.svc.Scale(r.Context(), q.Get("mode"), q.Get("key"))
	h.observe("scale", err)
	if err != nil {
		writeError(w, "scale lookup failed", err)
		return
	}
	writeCachedJSON(w, r, notes)
}

// Chords handles GET /api/chords.
//
//	@Summary		Find chords related to a scale
//	@Description	Returns chords with at most maxDiff notes outside the scale, ordered by chord root and chord type.
//	@Tags			chords
//	@Produce		json
//	@Param			mode		query		string	true	"Mode name"	example(Ionian)
//	@Param			key			query		string	true	"Key note name"	example(C)
//	@Param			maxDiff		query		int		false	"Maximum notes outside the scale"	default(0)
//	@Param			chordNote	query		string	false	"Only chords rooted on this note"
//	@Success		200			{array}		ChordDetailDTO
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chords [get]
func (h *Handler) Chords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := chordservice.ChordQuery{
		Mode:      q.Get("mode"),
		Key:       q.Get("key"),
		ChordNote: q.Get("chordNote"),
	}
	if raw := q.Get("maxDiff"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, "chord lookup failed", apperr.InvalidArgument("max_diff", raw))
			return
		}
		query.MaxDiff = n
	}
	if err := requireParams(q, "mode", "key"); err != nil {
		writeError(w, "chord lookup failed", err)
		return
	}

	chords, err := h.svc.Chords(r.Context(), query)
	h.observe("chords", err)
	if err != nil {
		writeError(w, "chord lookup failed", err)
		return
	}
	writeCachedJSON(w, r, chords)
}

// requireParams reports the first of names missing from q.
func requireParams(q url.Values, names ...string) error {
	for _, name := range names {
		if q.Get(name) == "" {
			return apperr.InvalidArgument(name, "")
		}
	}
	return nil
}
