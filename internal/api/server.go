// Package api exposes the optional status HTTP surface: liveness, metrics
// and a read-only view of the persisted announcement state.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/watch"
)

// Server serves the status endpoints. It only reads; all mutation happens
// in the watch loop.
type Server struct {
	store    watch.Store
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// New builds a Server. A nil gatherer falls back to the default registry.
func New(store watch.Store, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, gatherer: gatherer, logger: logger}
}

// Handler assembles the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/api/announcements", s.handleAnnouncements)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.store.Load())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}
