package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// flexBool normalizes the boolean spellings clients send: true/false,
// 1/0 and their quoted forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	switch strings.ToLower(string(raw)) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		v, err := strconv.ParseBool(string(raw))
		if err != nil {
			return fmt.Errorf("satisfied: invalid boolean %s", data)
		}
		*b = flexBool(v)
	}
	return nil
}

type criterionRequest struct {
	AwardKey  string `json:"award_key" validate:"required"`
	Criterion string `json:"criterion" validate:"required"`
}

type statusRequest struct {
	criterionRequest
	Satisfied *flexBool `json:"satisfied" validate:"required"`
}

// CriteriaHandler serves criterion reads and manual overrides.
type CriteriaHandler struct {
	deps Dependencies
}

// NewCriteriaHandler creates a new criteria handler.
func NewCriteriaHandler(deps Dependencies) *CriteriaHandler {
	return &CriteriaHandler{deps: deps}
}

// HandleGetState handles GET /v1/criteria/{award}/{criterion} requests.
func (h *CriteriaHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.deps.GetCriterionState(r.Context(), r.PathValue("award"), r.PathValue("criterion"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleUpdateStatus handles POST /v1/criteria/status requests.
func (h *CriteriaHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_criterion_status"
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, badRequest(op, err))
		return
	}
	state, err := h.deps.UpdateCriterionStatus(r.Context(), req.AwardKey, req.Criterion, bool(*req.Satisfied))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleClearOverride handles POST /v1/criteria/clear-override requests.
func (h *CriteriaHandler) HandleClearOverride(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_override"
	var req criterionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, badRequest(op, err))
		return
	}
	state, err := h.deps.ClearOverride(r.Context(), req.AwardKey, req.Criterion)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
