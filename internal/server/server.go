// Package server exposes the underwriting pipeline over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
	"github.com/laknarayana9/AgenticUnderwriting/internal/retrieval"
	"github.com/laknarayana9/AgenticUnderwriting/internal/store"
	"github.com/laknarayana9/AgenticUnderwriting/internal/workflow"
)

// Server routes quote submissions through the workflow engine and persists
// the resulting run records.
type Server struct {
	store       store.Store
	engines     map[workflow.Mode]*workflow.Engine
	defaultMode workflow.Mode
	guidelines  *retrieval.Engine
}

// New builds a Server. Both engine variants must be supplied so callers can
// select a mode per request; defaultMode is used when a request names none.
func New(st store.Store, basic, interactive *workflow.Engine, defaultMode workflow.Mode, guidelines *retrieval.Engine) *Server {
	return &Server{
		store: st,
		engines: map[workflow.Mode]*workflow.Engine{
			workflow.ModeBasic:       basic,
			workflow.ModeInteractive: interactive,
		},
		defaultMode: defaultMode,
		guidelines:  guidelines,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/quotes", s.handleSubmitQuote)
		r.Post("/quotes/{runID}/answers", s.handleSubmitAnswers)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/guidelines", s.handleGuidelines)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// quoteRequest is the POST /quotes body. Answers are only meaningful in
// interactive mode and are applied before validation re-runs.
type quoteRequest struct {
	Submission model.QuoteSubmission `json:"submission"`
	Answers    map[string]any        `json:"answers,omitempty"`
	Mode       string                `json:"mode,omitempty"`
}

func (s *Server) handleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := s.defaultMode
	if req.Mode != "" {
		switch workflow.Mode(req.Mode) {
		case workflow.ModeBasic, workflow.ModeInteractive:
			mode = workflow.Mode(req.Mode)
		default:
			writeError(w, http.StatusBadRequest, "mode must be basic or interactive")
			return
		}
	}

	runID := uuid.NewString()
	state, runErr := s.engines[mode].Run(r.Context(), req.Submission, req.Answers)
	rec := model.NewRunRecord(runID, state, runErr)

	if err := s.store.SaveRun(r.Context(), rec); err != nil {
		zap.L().Error("server: save run", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	if runErr != nil {
		// The failed record is persisted above so the run stays auditable.
		zap.L().Error("server: workflow failed", zap.String("run_id", runID), zap.Error(runErr))
		writeJSON(w, http.StatusInternalServerError, rec)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// answersRequest is the POST /quotes/{runID}/answers body.
type answersRequest struct {
	Answers map[string]any `json:"answers"`
}

func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "answers are required")
		return
	}

	rec, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Status != model.RunStatusWaitingForInfo {
		writeError(w, http.StatusConflict, "run is not waiting for info")
		return
	}

	// Resume by re-running the original submission with the new answers.
	state, runErr := s.engines[workflow.ModeInteractive].Run(r.Context(), rec.WorkflowState.QuoteSubmission, req.Answers)
	rec.Resume(state, runErr)

	if err := s.store.SaveRun(r.Context(), rec); err != nil {
		zap.L().Error("server: save resumed run", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	if runErr != nil {
		zap.L().Error("server: resumed workflow failed", zap.String("run_id", runID), zap.Error(runErr))
		writeJSON(w, http.StatusInternalServerError, rec)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Limit: 50}

	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = model.RunStatus(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	rec, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGuidelines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":    s.guidelines.Summary(),
		"total_chunks": s.guidelines.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
