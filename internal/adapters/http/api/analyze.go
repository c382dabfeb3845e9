package api

import (
	"net/http"

	"github.com/okian/laurel/internal/domain/model"
)

// analyzeRequest mirrors the OpenAPI schema for POST /v1/analyze and
// POST /v1/analyze/async.
type analyzeRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	ContentID   string `json:"content_id" validate:"required,max=128"`
}

func (a analyzeRequest) kind() (model.ContentKind, error) {
	return model.ParseContentKind(a.ContentType)
}

// AnalyzeHandler serves single, async and whole-corpus analysis.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

func (h *AnalyzeHandler) decode(w http.ResponseWriter, r *http.Request, op string) (model.ContentKind, string, bool) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, badRequest(op, err))
		return "", "", false
	}
	kind, err := req.kind()
	if err != nil {
		writeError(w, r, badRequest(op, err))
		return "", "", false
	}
	return kind, req.ContentID, true
}

// HandleAnalyze handles POST /v1/analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	kind, id, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	res, err := h.deps.AnalyzeSingleContent(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAnalyzeAsync handles POST /v1/analyze/async requests. Accepted
// requests answer 202; a request for an item already pending answers 200
// with duplicate set.
func (h *AnalyzeHandler) HandleAnalyzeAsync(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_async"
	kind, id, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	sub, err := h.deps.SubmitContentAnalysis(r.Context(), kind, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Content: sub.Content, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: sub.RequestID, Content: sub.Content})
}

// HandleAnalyzeAll handles POST /v1/analyze/all requests.
func (h *AnalyzeHandler) HandleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.AnalyzeAllContent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
