package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foundgames"

var (
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API responses with status >= 400",
		},
		[]string{"method", "route", "status"},
	)

	ImportRowsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_import_rows_total",
			Help:      "Roster rows processed by outcome",
		},
		[]string{"outcome"},
	)

	VerificationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification requests by resulting status",
		},
		[]string{"status"},
	)

	DiscordLookupCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discord_lookups_total",
			Help:      "Discord membership lookups by result",
		},
		[]string{"result"},
	)

	EventClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "admin_event_clients",
		Help:      "Connected admin event stream clients",
	})
)

// Middleware records request duration per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		RequestDurationHistogram.With(labels).Observe(time.Since(start).Seconds())
		if status >= 400 {
			APIErrorCounter.With(labels).Inc()
		}
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordImport(newResidents, updated, skipped, errors int) {
	ImportRowsCounter.WithLabelValues("new").Add(float64(newResidents))
	ImportRowsCounter.WithLabelValues("updated").Add(float64(updated))
	ImportRowsCounter.WithLabelValues("skipped").Add(float64(skipped))
	ImportRowsCounter.WithLabelValues("error").Add(float64(errors))
}

func RecordVerification(status string) {
	VerificationCounter.WithLabelValues(status).Inc()
}

func RecordDiscordLookup(result string) {
	DiscordLookupCounter.WithLabelValues(result).Inc()
}
