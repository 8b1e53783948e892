package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
)

// unmatchedRoute labels requests that no route matched, keeping the path
// label bounded.
const unmatchedRoute = "unmatched"

// RequestTiming logs the processing time of every request and records the
// HTTP request metrics.  Install it outermost so the time includes every
// other middleware.
func RequestTiming(logger logging.Logger, metrics *prometheus.AppMetrics) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	logger = logger.Named("timing")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			active := metrics.HTTPActiveRequests.WithLabelValues(r.Method)
			active.Inc()
			defer active.Dec()

			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			elapsed := time.Since(start)

			logger.Info(fmt.Sprintf("Request %s %s %s processed in %.5f seconds",
				r.Method, r.URL.Path, r.URL.RawQuery, elapsed.Seconds()))
			prometheus.RecordHTTPRequest(metrics, r.Method, routePattern(r), wrapped.statusCode, elapsed)
		})
	}
}

// routePattern returns the chi route pattern that served r, e.g.
// /molecules/{id}.  It is only complete once the router has run.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

//Personal.AI order the ending
