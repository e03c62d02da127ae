package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/chordanalyzr/internal/apperr"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/things/"+id, nil))
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/things/{id}", http.MethodGet, "418"))
	if got != 3 {
		t.Errorf("requests_total = %v, want 3", got)
	}
}

func TestObserveQuery(t *testing.T) {
	m := New()
	m.ObserveQuery("chords", nil)
	m.ObserveQuery("chords", apperr.NotFound("mode", "Foobar"))
	m.ObserveQuery("chords", apperr.InvalidArgument("max_diff", "-1"))
	m.ObserveQuery("chords", errors.New("boom"))

	for result, want := range map[string]float64{"ok": 1, "not_found": 1, "invalid": 1, "error": 1} {
		if got := testutil.ToFloat64(m.queriesTotal.WithLabelValues("chords", result)); got != want {
			t.Errorf("%s = %v, want %v", result, got, want)
		}
	}
}

func TestHandler_ExposesGauge(t *testing.T) {
	m := New()
	m.SetRelations("eager", 42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `chordanalyzr_engine_relations{strategy="eager"} 42`) {
		t.Errorf("gauge missing from exposition:\n%s", rec.Body.String())
	}
}
