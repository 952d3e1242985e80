// Package api binds the trajectory service to HTTP: routes, parameter
// validation, serialization, and error translation.
package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/orbitviz/trajgo/internal/health"
	"github.com/orbitviz/trajgo/internal/metrics"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/trajectory"
)

// Config holds the HTTP server's settings.
type Config struct {
	Addr       string
	Version    string
	TrustProxy bool // trust X-Forwarded-For / X-Real-IP for request logging
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer   *http.Server
	logger       *slog.Logger
	generator    *trajectory.Generator
	materializer *scenario.Materializer
	version      string
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, logger *slog.Logger, gen *trajectory.Generator, mat *scenario.Materializer) *Server {
	s := &Server{
		logger:       logger,
		generator:    gen,
		materializer: mat,
		version:      cfg.Version,
	}

	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /health", health.Handler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /trajectory", s.handleTrajectory)
	mux.HandleFunc("GET /trajectory/csv", s.handleTrajectoryCSV)
	mux.HandleFunc("POST /trajectory/from-tle", s.handleFromTLE)
	mux.HandleFunc("POST /trajectory/from-tle/csv", s.handleFromTLECSV)
	mux.HandleFunc("POST /propagation/orbit", s.handlePropagateOrbit)

	// Build middleware chain: metrics -> logging -> recover -> mux.
	var handler http.Handler = mux
	handler = recoverMiddleware(logger)(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Propagation can take a while; leave generous room before the
		// deployment-level timeout cuts in.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clientIP extracts the client address for request logging. Proxy headers
// are only honored behind a trusted reverse proxy.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if i := strings.IndexByte(xff, ','); i > 0 {
				xff = xff[:i]
			}
			if ip := strings.TrimSpace(xff); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if r.URL.Path == "/health" {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", clientIP(r, trustProxy),
			)
		})
	}
}

// recoverMiddleware converts panics into a 500 carrying the panic value and
// stack.
func recoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := string(debug.Stack())
					logger.Error("handler panic",
						"path", r.URL.Path,
						"panic", rec,
						"stack", stack,
					)
					writeJSON(w, http.StatusInternalServerError, map[string]any{
						"error": "internal error",
						"stack": stack,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
