// Package server exposes the benchmark data over a small JSON API and
// serves the dashboard's static files.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bverlaan/yogabench/config"
	"bverlaan/yogabench/logger"
	"bverlaan/yogabench/services/status"
)

// Refresher triggers a crawl pass. Implemented by the worker runner.
type Refresher interface {
	Refresh(limit int) error
}

// Server serves the dashboard API
type Server struct {
	cfg     config.Config
	runner  Refresher
	tracker *status.Tracker
	httpSrv *http.Server
	log     *logger.Logger
}

// New creates a Server. The runner may be nil, in which case the refresh
// endpoint reports the pipeline as unavailable.
func New(cfg config.Config, runner Refresher, tracker *status.Tracker) *Server {
	s := &Server{
		cfg:     cfg,
		runner:  runner,
		tracker: tracker,
		log:     logger.ForServer(),
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/offers", s.handleOffers)
	mux.HandleFunc("/api/competitors", s.handleCompetitors)
	mux.HandleFunc("/api/pins", s.handlePins)
	mux.HandleFunc("/api/own_studio", s.handleOwnStudio)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/refresh/status", s.handleRefreshStatus)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.WebDir)))
	return mux
}

// Start begins serving and blocks until the listener fails or is shut down
func (s *Server) Start() error {
	s.log.WithField("addr", s.cfg.ListenAddr).Info("server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSON(w, statusCode, map[string]string{"error": message})
}
