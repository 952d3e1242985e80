package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trajgo_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trajgo_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trajgo_generation_duration_seconds",
			Help:    "Trajectory generation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	generationPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trajgo_generation_points",
			Help:    "Points per successful trajectory result.",
			Buckets: []float64{2, 5, 10, 20, 50, 100, 500, 1000, 10000},
		},
	)

	fallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trajgo_generation_fallbacks_total",
			Help: "Total trajectory requests served by the synthetic fallback.",
		},
	)

	pointSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trajgo_point_skips_total",
			Help: "Total sample points skipped due to frame query failures.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(generationDurationSeconds)
	prometheus.MustRegister(generationPoints)
	prometheus.MustRegister(fallbacksTotal)
	prometheus.MustRegister(pointSkipsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// knownRoutes are the service's fixed paths, used as metric labels as-is.
var knownRoutes = map[string]bool{
	"/":                        true,
	"/health":                  true,
	"/metrics":                 true,
	"/trajectory":              true,
	"/trajectory/csv":          true,
	"/trajectory/from-tle":     true,
	"/trajectory/from-tle/csv": true,
	"/propagation/orbit":       true,
}

// normalizeRoute collapses unknown paths (bots, scanners, typos) to a single
// label so they cannot blow up metric cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// RecordGeneration records a successful trajectory generation.
func RecordGeneration(duration time.Duration, points int) {
	generationDurationSeconds.Observe(duration.Seconds())
	generationPoints.Observe(float64(points))
}

// RecordFallback counts a request served by the synthetic fallback.
func RecordFallback() {
	fallbacksTotal.Inc()
}

// RecordPointSkip counts a sample point skipped by a frame query failure.
func RecordPointSkip() {
	pointSkipsTotal.Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		route := normalizeRoute(r.URL.Path)
		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
