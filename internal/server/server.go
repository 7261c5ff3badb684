// Package server exposes the resolution chain over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/resolver"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// Server serves the risk, shelter and resolve endpoints.
type Server struct {
	pipeline     *resolver.Pipeline
	scorer       resolver.RiskScorer
	shelters     resolver.ShelterSource
	defaultLimit int
	origins      []string
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultShelterLimit sets the shelter count used when the query
// omits limit.
func WithDefaultShelterLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// New creates a Server over the resolution pipeline and its sources.
func New(pl *resolver.Pipeline, scorer resolver.RiskScorer, shelters resolver.ShelterSource, opts ...Option) *Server {
	s := &Server{
		pipeline:     pl,
		scorer:       scorer,
		shelters:     shelters,
		defaultLimit: 3,
		origins:      []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/risk", s.handleRisk)
	r.Get("/shelters/nearest", s.handleShelters)
	r.Get("/resolve", s.handleResolve)

	return r
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("http server listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server: shutdown")
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	score, err := s.scorer.ScoreAt(r.Context(), p)
	if err != nil {
		zap.L().Error("risk lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, eris.New("risk lookup failed"))
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleShelters(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, eris.New("limit must be an integer"))
			return
		}
		limit = n
	}

	candidates, err := s.shelters.Candidates(r.Context(), p, limit)
	if err != nil {
		zap.L().Error("shelter lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, eris.New("shelter lookup failed"))
		return
	}

	results, err := shelter.Nearest(p, candidates, limit)
	if err != nil {
		if eris.Is(err, shelter.ErrOutOfCoverage) || eris.Is(err, shelter.ErrNoFacility) {
			writeJSON(w, http.StatusOK, []shelter.Result{})
			return
		}
		writeError(w, http.StatusInternalServerError, eris.New("shelter resolution failed"))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	assessment, err := s.pipeline.Resolve(r.Context(), p, limit)
	if err != nil {
		if eris.Is(err, geo.ErrInvalidCoordinate) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		zap.L().Error("resolve failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, eris.New("resolve failed"))
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func queryPoint(r *http.Request) (geo.Point, error) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		return geo.Point{}, eris.New("lat and lon are required")
	}
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return geo.Point{}, eris.Wrap(err, "server: invalid point")
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"status": "error", "detail": err.Error()})
}
