package middleware

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

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "citywalk",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "citywalk",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "citywalk",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})
)

// Metrics records request counts and latencies. Requests are labelled by
// chi route pattern so path parameters do not explode cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  routePattern(r),
			"status": strconv.Itoa(status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
