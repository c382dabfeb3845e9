// Package types contains the read models returned by engine operations.
package types

import (
	"time"

	"github.com/okian/laurel/internal/domain/model"
)

// ReadinessStatus classifies an award's application readiness.
type ReadinessStatus string

const (
	StatusIncomplete   ReadinessStatus = "incomplete"
	StatusNearlyReady  ReadinessStatus = "nearly_ready"
	StatusReadyToApply ReadinessStatus = "ready_to_apply"
)

// ReadinessSummary is derived from checklist state and never stored.
type ReadinessSummary struct {
	AwardKey       string          `json:"award_key"`
	AwardName      string          `json:"award_name"`
	DocumentCount  int             `json:"document_count"`
	EventCount     int             `json:"event_count"`
	SatisfiedCount int             `json:"satisfied_count"`
	TotalCount     int             `json:"total_count"`
	Rate           float64         `json:"rate"`
	Status         ReadinessStatus `json:"status"`
}

// AwardSupport names an award a content item supports with its best confidence.
type AwardSupport struct {
	AwardKey   string `json:"award_key"`
	AwardName  string `json:"award_name"`
	Confidence int    `json:"confidence"`
}

// SatisfiedCriterion is a criterion currently satisfied, with attribution.
type SatisfiedCriterion struct {
	AwardKey      string            `json:"award_key"`
	Criterion     string            `json:"criterion"`
	Override      bool              `json:"override"`
	SatisfiedBy   *model.ContentRef `json:"satisfied_by,omitempty"`
	ByThisContent bool              `json:"by_this_content"`
}

// Recommendation is advice attached to an analysis.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalysisResult is returned by single-content analysis.
type AnalysisResult struct {
	Content           model.ContentRef     `json:"content"`
	SupportedAwards   []AwardSupport       `json:"supported_awards"`
	SatisfiedCriteria []SatisfiedCriterion `json:"satisfied_criteria"`
	KeywordsFound     []string             `json:"keywords_found"`
	ConfidenceScore   int                  `json:"confidence_score"`
	Matches           []model.MatchResult  `json:"matches"`
	Recommendations   []Recommendation     `json:"recommendations"`
}

// Submission acknowledges a queued analysis request. Duplicate is set when
// the same item was already pending and nothing new was queued.
type Submission struct {
	RequestID string           `json:"request_id,omitempty"`
	Content   model.ContentRef `json:"content"`
	Duplicate bool             `json:"duplicate"`
}

// BatchAnalysisResult is returned by whole-corpus analysis.
type BatchAnalysisResult struct {
	RunID                  string               `json:"run_id"`
	TotalDocuments         int                  `json:"total_documents"`
	TotalEvents            int                  `json:"total_events"`
	TotalCriteriaSatisfied int                  `json:"total_criteria_satisfied"`
	AwardsReady            int                  `json:"awards_ready"`
	AwardBreakdown         []ReadinessSummary   `json:"award_breakdown"`
	MissingCriteria        []model.CriterionKey `json:"missing_criteria"`
	StartedAt              time.Time            `json:"started_at"`
	Duration               time.Duration        `json:"duration_ns"`
}

// SupportingContent is an active item currently matching a criterion.
type SupportingContent struct {
	Content    model.ContentRef `json:"content"`
	Title      string           `json:"title"`
	Confidence int              `json:"confidence"`
}

// ChecklistEntry is one criterion row of an award checklist.
type ChecklistEntry struct {
	Criterion         string              `json:"criterion"`
	Satisfied         bool                `json:"satisfied"`
	Override          bool                `json:"override"`
	SatisfiedBy       *model.ContentRef   `json:"satisfied_by,omitempty"`
	UpdatedAt         time.Time           `json:"updated_at"`
	SupportingContent []SupportingContent `json:"supporting_content"`
	Suggestions       []string            `json:"suggestions"`
}

// Checklist is the detailed view of one award.
type Checklist struct {
	AwardKey      string           `json:"award_key"`
	AwardName     string           `json:"award_name"`
	DocumentCount int              `json:"document_count"`
	EventCount    int              `json:"event_count"`
	Checklist     []ChecklistEntry `json:"checklist"`
	Readiness     ReadinessSummary `json:"readiness"`
}

// Priority ranks missing-content suggestions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// MissingContentSuggestion guides authoring for an unsatisfied criterion.
type MissingContentSuggestion struct {
	Criterion   string   `json:"criterion"`
	Priority    Priority `json:"priority"`
	Suggestions []string `json:"suggestions"`
}

// MissingCriteriaReport summarizes gaps for one award.
type MissingCriteriaReport struct {
	AwardKey      string          `json:"award_key"`
	AwardName     string          `json:"award_name"`
	Total         int             `json:"total"`
	Satisfied     int             `json:"satisfied"`
	Missing       int             `json:"missing"`
	Readiness     float64         `json:"readiness"`
	Status        ReadinessStatus `json:"status"`
	MissingList   []string        `json:"missing_list"`
	SatisfiedList []string        `json:"satisfied_list"`
}
