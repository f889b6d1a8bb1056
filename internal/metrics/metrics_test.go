package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/admin/buildings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(APIErrorCounter.WithLabelValues("GET", "/api/admin/buildings/{id}", "404"))
	req := httptest.NewRequest(http.MethodGet, "/api/admin/buildings/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	after := testutil.ToFloat64(APIErrorCounter.WithLabelValues("GET", "/api/admin/buildings/{id}", "404"))
	if after-before != 1 {
		t.Fatalf("expected error counter to increase by 1, got %v", after-before)
	}
}

func TestRecordImport(t *testing.T) {
	before := testutil.ToFloat64(ImportRowsCounter.WithLabelValues("new"))
	RecordImport(3, 1, 0, 2)
	if got := testutil.ToFloat64(ImportRowsCounter.WithLabelValues("new")) - before; got != 3 {
		t.Fatalf("expected 3 new rows recorded, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordDiscordLookup("found")
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "foundgames_discord_lookups_total") {
		t.Fatalf("expected discord lookup metric in output")
	}
}
