// File path: internal/api/server.go

// Package api exposes the benchmark catalog over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snvbench/benchdb/internal/auth"
	"github.com/snvbench/benchdb/internal/bench"
	"github.com/snvbench/benchdb/internal/common"
	"github.com/snvbench/benchdb/internal/ingest"
	"github.com/snvbench/benchdb/internal/sqlite"
)

// Identity headers. They name the caller; whether that caller is an admin is
// the policy's decision, not the header's.
const (
	headerUser   = "X-Benchdb-User"
	headerUserID = "X-Benchdb-User-Id"
)

type Server struct {
	router       chi.Router
	store        *sqlite.Store
	orchestrator *ingest.Orchestrator
	policy       *auth.Policy
}

func NewServer(store *sqlite.Store, orch *ingest.Orchestrator, policy *auth.Policy) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		store:        store,
		orchestrator: orch,
		policy:       policy,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Post("/v1/experiments", s.handleUpload)
	s.router.Get("/v1/experiments", s.handleList)
	s.router.Get("/v1/experiments/{id}", s.handleGet)
	s.router.Get("/v1/experiments/{id}/results", s.handleResults)
	s.router.Delete("/v1/experiments/{id}", s.handleDelete)
	s.router.Post("/v1/experiments/{id}/visibility", s.handleVisibility)
	s.router.Get("/v1/regions", s.handleRegions)
	s.router.Get("/v1/logs", s.handleLogs)
}

// principal extracts the caller identity from the request headers.
func principal(r *http.Request) auth.Principal {
	p := auth.Principal{Username: r.Header.Get(headerUser)}
	if raw := r.Header.Get(headerUserID); raw != "" {
		if id := bench.ParseInt(raw); id != nil {
			p.UserID = id
		}
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// errorStatus maps the domain error taxonomy onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case bench.IsValidation(err):
		return http.StatusBadRequest
	case bench.IsConflict(err):
		return http.StatusConflict
	case bench.IsUnauthorized(err):
		return http.StatusForbidden
	case bench.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
