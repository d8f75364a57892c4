package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kp_http_requests_total",
			Help: "HTTP requests by route pattern and status",
		},
		[]string{"route", "status"},
	)
	RoundsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kp_rounds_generated_total",
			Help: "Rounds generated per game",
		},
		[]string{"game", "daily"},
	)
	ResultsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kp_results_submitted_total",
			Help: "Result submissions per game and outcome",
		},
		[]string{"game", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(RoundsGenerated)
	prometheus.MustRegister(ResultsSubmitted)
}

// instrument counts requests by chi route pattern so ids in paths do not
// explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
