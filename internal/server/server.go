// Package server exposes detection and feedback storage over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tavgar/patternhunter/internal/feedback"
	"github.com/tavgar/patternhunter/internal/pattern"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

// Server serves the HTTP API.
type Server struct {
	scanner *scan.Scanner
	store   *feedback.Store
	logger  *zap.Logger
	router  *mux.Router
}

// DetectRequest is the body of POST /api/detect. Previous is optional.
type DetectRequest struct {
	Current  string  `json:"current"`
	Previous *string `json:"previous,omitempty"`
}

// DetectResult is one pattern found by POST /api/detect.
type DetectResult struct {
	Pattern   string `json:"pattern"`
	ClassName string `json:"className"`
	InfoURL   string `json:"infoUrl"`
	Info      string `json:"info"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Description string `json:"description"`
	URL         string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Server.
func New(s *scan.Scanner, store *feedback.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{scanner: s, store: store, logger: logger, router: mux.NewRouter()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/patterns", s.handlePatterns).Methods(http.MethodGet)
	api.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)
	api.HandleFunc("/feedback", s.handleListFeedback).Methods(http.MethodGet)
	api.HandleFunc("/feedback", s.handleAddFeedback).Methods(http.MethodPost)
	s.router.Use(s.logRequests)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "registryValid": s.scanner.Registry().Valid()})
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	reg := s.scanner.Registry()
	writeJSON(w, http.StatusOK, struct {
		Valid    bool                 `json:"valid"`
		Patterns []pattern.Definition `json:"patterns"`
	}{Valid: reg.Valid(), Patterns: reg.Patterns()})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cur := &pattern.Node{Text: req.Current}
	var prev *pattern.Node
	if req.Previous != nil {
		prev = &pattern.Node{Text: *req.Previous}
	}
	results := []DetectResult{}
	for _, d := range s.scanner.Registry().Patterns() {
		if d.Detect(cur, prev) {
			results = append(results, DetectResult{Pattern: d.Name, ClassName: d.ClassName, InfoURL: d.InfoURL, Info: d.Info})
		}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.store.Add(r.Context(), req.Description, req.URL)
	if errors.Is(err, feedback.ErrEmptyDescription) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.logger.Error("failed to store feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("failed to store feedback"))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("failed to list feedback"))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
