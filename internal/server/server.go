// Package server exposes a read-mostly JSON API over the pipeline's stored
// state, plus an endpoint to trigger a pipeline run.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jonathan/notion-insights/internal/pipeline"
	"github.com/jonathan/notion-insights/internal/store"
	"github.com/jonathan/notion-insights/internal/summary"
	"github.com/jonathan/notion-insights/internal/types"
)

const defaultListLimit = 20

// Repository is the slice of the store the API reads from.
type Repository interface {
	ProcessingStats(ctx context.Context) (types.ProcessingStats, error)
	ListWeeklySummaries(ctx context.Context, limit int) ([]types.WeeklySummary, error)
	WeeklySummaryFor(ctx context.Context, weekStart, weekEnd time.Time) (*types.WeeklySummary, error)
	DocumentsByStatus(ctx context.Context, statuses ...types.ProcessingStatus) ([]types.Document, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Runner triggers a full pipeline run.
type Runner interface {
	RunFull(ctx context.Context, limit int) (*pipeline.Result, error)
}

// Server serves the JSON API.
type Server struct {
	repo    Repository
	runner  Runner
	running atomic.Bool
}

// New creates a server over the given store and pipeline.
func New(repo Repository, runner Runner) *Server {
	return &Server{repo: repo, runner: runner}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/summaries", s.handleSummaries)
	mux.HandleFunc("GET /api/summaries/latest", s.handleLatestSummary)
	mux.HandleFunc("GET /api/summaries/current", s.handleCurrentSummary)
	mux.HandleFunc("GET /api/documents", s.handleDocuments)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("POST /api/pipeline/run", s.handlePipelineRun)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.ProcessingStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.repo.ListWeeklySummaries(r.Context(), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []types.WeeklySummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleLatestSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.repo.ListWeeklySummaries(r.Context(), 1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(summaries) == 0 {
		writeError(w, http.StatusNotFound, "no summaries generated yet")
		return
	}
	writeJSON(w, http.StatusOK, summaries[0])
}

// handleCurrentSummary serves the summary for the week containing now,
// as opposed to /latest which serves the most recently generated one.
func (s *Server) handleCurrentSummary(w http.ResponseWriter, r *http.Request) {
	start, end := summary.WeekBounds(time.Now())

	weekly, err := s.repo.WeeklySummaryFor(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if weekly == nil {
		writeError(w, http.StatusNotFound, "no summary generated for the current week")
		return
	}
	writeJSON(w, http.StatusOK, weekly)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	status := types.ProcessingStatus(r.URL.Query().Get("status"))
	switch status {
	case types.StatusExtracted, types.StatusClassified, types.StatusFailed:
	case "":
		writeError(w, http.StatusBadRequest, "status query parameter is required")
		return
	default:
		writeError(w, http.StatusBadRequest, "unknown status "+string(status))
		return
	}

	docs, err := s.repo.DocumentsByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []types.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.repo.ListRuns(r.Context(), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handlePipelineRun kicks off a full run in the background. Only one run
// may be in flight at a time.
func (s *Server) handlePipelineRun(w http.ResponseWriter, _ *http.Request) {
	if !s.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "a pipeline run is already in progress")
		return
	}

	go func() {
		defer s.running.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if _, err := s.runner.RunFull(ctx, 0); err != nil {
			log.Printf("background pipeline run failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}
