package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/voltlab/voltscan/internal/config"
	"github.com/voltlab/voltscan/internal/domain"
	"github.com/voltlab/voltscan/internal/pipeline"
)

// Server is the read-only operator surface: health, metrics, and the last
// completed run's summary. It never feeds anything back into the pipeline.
type Server struct {
	cfg  config.ServerConfig
	http *http.Server

	mu     sync.RWMutex
	latest *pipeline.RunResult
}

// NewServer builds the server and its routes.
func NewServer(cfg config.ServerConfig, gatherer prometheus.Gatherer) *Server {
	s := &Server{cfg: cfg}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/v1/runs/latest", s.handleLatest).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// SetLatest publishes a completed run to the API.
func (s *Server) SetLatest(res *pipeline.RunResult) {
	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// runSummary is the wire shape of /v1/runs/latest.
type runSummary struct {
	RunID      string                          `json:"run_id"`
	StartedAt  time.Time                       `json:"started_at"`
	FinishedAt time.Time                       `json:"finished_at"`
	Stress     domain.StressSnapshot           `json:"stress"`
	Rows       int                             `json:"rows"`
	Statuses   map[domain.AcceptanceStatus]int `json:"statuses"`
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed runs"})
		return
	}
	writeJSON(w, http.StatusOK, runSummary{
		RunID:      latest.RunID.String(),
		StartedAt:  latest.StartedAt,
		FinishedAt: latest.FinishedAt,
		Stress:     latest.Stress,
		Rows:       len(latest.Decisions),
		Statuses:   latest.StatusCounts(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}
