package api

import (
	"bytes"
	"net/http"

	"github.com/okian/laurel/internal/adapters/export"
	"github.com/okian/laurel/pkg/logger"
)

const exportFilename = "award_readiness.csv"

// ChecklistHandler serves the read side: checklists, readiness and gap
// reports.
type ChecklistHandler struct {
	deps Dependencies
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(deps Dependencies) *ChecklistHandler {
	return &ChecklistHandler{deps: deps}
}

// HandleChecklists handles GET /v1/checklists requests.
func (h *ChecklistHandler) HandleChecklists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.deps.GetAllChecklists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// HandleAwardChecklist handles GET /v1/checklists/{award} requests.
func (h *ChecklistHandler) HandleAwardChecklist(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.GetAwardChecklist(r.Context(), r.PathValue("award"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleReadiness handles GET /v1/readiness requests.
func (h *ChecklistHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.GetReadinessSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleSuggestions handles GET /v1/suggestions/{award} requests.
func (h *ChecklistHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.deps.GetMissingContentSuggestions(r.Context(), r.PathValue("award"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// HandleMissingReport handles GET /v1/report/missing requests.
func (h *ChecklistHandler) HandleMissingReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.GetMissingCriteriaReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleExport handles GET /v1/report/export?format=csv|json requests: one
// row per award with readiness, missing criteria and its best matches.
func (h *ChecklistHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	lists, err := h.deps.GetAllChecklists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := export.Rows(lists)
	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, rows)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Get().Debug(r.Context(), "write export failed", logger.Error(err))
	}
}
