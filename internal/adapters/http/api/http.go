// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalyzeSingleContent(ctx context.Context, kind model.ContentKind, id string) (types.AnalysisResult, error)
	AnalyzeAllContent(ctx context.Context) (types.BatchAnalysisResult, error)
	SubmitContentAnalysis(ctx context.Context, kind model.ContentKind, id string) (types.Submission, error)

	GetAllChecklists(ctx context.Context) ([]types.Checklist, error)
	GetAwardChecklist(ctx context.Context, awardKey string) (types.Checklist, error)
	GetReadinessSummary(ctx context.Context) ([]types.ReadinessSummary, error)
	GetMissingContentSuggestions(ctx context.Context, awardKey string) ([]types.MissingContentSuggestion, error)
	GetMissingCriteriaReport(ctx context.Context) ([]types.MissingCriteriaReport, error)

	GetCriterionState(ctx context.Context, awardKey, criterion string) (model.CriterionState, error)
	UpdateCriterionStatus(ctx context.Context, awardKey, criterion string, satisfied bool) (model.CriterionState, error)
	ClearOverride(ctx context.Context, awardKey, criterion string) (model.CriterionState, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	analyzeHandler   *AnalyzeHandler
	checklistHandler *ChecklistHandler
	criteriaHandler  *CriteriaHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		analyzeHandler:   NewAnalyzeHandler(deps),
		checklistHandler: NewChecklistHandler(deps),
		criteriaHandler:  NewCriteriaHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /v1/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /v1/analyze/async", MetricsMiddleware(s.analyzeHandler.HandleAnalyzeAsync, "analyze_async"))
	mux.HandleFunc("POST /v1/analyze/all", MetricsMiddleware(s.analyzeHandler.HandleAnalyzeAll, "analyze_all"))

	mux.HandleFunc("GET /v1/checklists", MetricsMiddleware(s.checklistHandler.HandleChecklists, "checklists"))
	mux.HandleFunc("GET /v1/checklists/{award}", MetricsMiddleware(s.checklistHandler.HandleAwardChecklist, "award_checklist"))
	mux.HandleFunc("GET /v1/readiness", MetricsMiddleware(s.checklistHandler.HandleReadiness, "readiness"))
	mux.HandleFunc("GET /v1/suggestions/{award}", MetricsMiddleware(s.checklistHandler.HandleSuggestions, "suggestions"))
	mux.HandleFunc("GET /v1/report/missing", MetricsMiddleware(s.checklistHandler.HandleMissingReport, "missing_report"))
	mux.HandleFunc("GET /v1/report/export", MetricsMiddleware(s.checklistHandler.HandleExport, "report_export"))

	mux.HandleFunc("GET /v1/criteria/{award}/{criterion}", MetricsMiddleware(s.criteriaHandler.HandleGetState, "criterion_state"))
	mux.HandleFunc("POST /v1/criteria/status", MetricsMiddleware(s.criteriaHandler.HandleUpdateStatus, "criterion_status"))
	mux.HandleFunc("POST /v1/criteria/clear-override", MetricsMiddleware(s.criteriaHandler.HandleClearOverride, "clear_override"))
}

type ackResponse struct {
	Status    string           `json:"status"`
	RequestID string           `json:"request_id,omitempty"`
	Content   model.ContentRef `json:"content"`
	Duplicate bool             `json:"duplicate"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return model.Validator().Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Debug(context.Background(), "write response failed", logger.Error(err))
	}
}
