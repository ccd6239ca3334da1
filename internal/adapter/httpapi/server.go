// Package httpapi exposes the service's HTTP surfaces: operational
// endpoints for the worker, and the read-only events API with the map page.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
)

//go:embed static
var staticFiles embed.FS

const defaultEventsLimit = 2000

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// EventLister returns stored events, newest first, capped at limit.
type EventLister interface {
	ListEvents(ctx context.Context, limit int) ([]domain.Event, error)
}

// Server wraps an http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewOpsServer creates the worker's operational server with /healthz,
// /readyz, and /metrics routes.
func NewOpsServer(addr string, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := newServer(addr, mux, logger)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// NewAPIServer creates the read API server: /events as JSON plus the
// embedded map page at the root, alongside the operational routes.
func NewAPIServer(addr string, lister EventLister, maxLimit int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := newServer(addr, mux, logger)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents(lister, maxLimit))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embed layout is fixed at build time
	}
	mux.Handle("GET /", http.FileServerFS(static))

	return s
}

func newServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleEvents(lister EventLister, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultEventsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "limit must be a positive integer",
				})
				return
			}
			limit = n
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		events, err := lister.ListEvents(r.Context(), limit)
		if err != nil {
			s.logger.Error("list events failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "internal error",
			})
			return
		}
		if events == nil {
			events = []domain.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
