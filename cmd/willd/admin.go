package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"willvault/native/will"
)

// blobReader is the read half of blobstore.Store, kept local so this
// package doesn't need the full Put surface just to serve downloads.
type blobReader interface {
	Get(ctx context.Context, cid string) ([]byte, error)
}

// AdminServer exposes a read-only operator surface over the Will Engine:
// health, Prometheus metrics, single-will lookups, and encrypted blob
// downloads by content id. It never exposes a mutating endpoint — every
// state transition requires the caller's own Authorization, which an HTTP
// request from an operator terminal doesn't carry.
type AdminServer struct {
	engine      *will.Engine
	blobs       blobReader
	bearerToken string
	router      http.Handler
}

// NewAdminServer constructs an AdminServer wrapping engine and blobs.
// bearerToken may be empty, in which case the admin surface is
// unauthenticated (suitable only for local demos).
func NewAdminServer(engine *will.Engine, blobs blobReader, bearerToken string) *AdminServer {
	s := &AdminServer{engine: engine, blobs: blobs, bearerToken: bearerToken}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *AdminServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *AdminServer) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(protected chi.Router) {
		protected.Use(s.requireBearer)
		protected.Get("/wills/{id}", s.handleGetWill)
		protected.Get("/wills", s.handleListWills)
		protected.Get("/blobs/{cid}", s.handleGetBlob)
	})

	return r
}

func (s *AdminServer) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.bearerToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		supplied := header[len(prefix):]
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.bearerToken)) != 1 {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *AdminServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *AdminServer) handleGetWill(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid will id", http.StatusBadRequest)
		return
	}
	record, err := s.engine.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}

func (s *AdminServer) handleListWills(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

func (s *AdminServer) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		http.Error(w, "blob store unavailable", http.StatusServiceUnavailable)
		return
	}
	cid := chi.URLParam(r, "cid")
	raw, err := s.blobs.Get(r.Context(), cid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(raw)
}
