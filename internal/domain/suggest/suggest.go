// Package suggest turns unsatisfied criteria into authoring guidance.
package suggest

import (
	"fmt"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
)

// ClassificationNeeded is the recommendation given when content supports no award.
var ClassificationNeeded = types.Recommendation{
	Title:       "Content Classification Needed",
	Description: "This content may need manual review or additional keywords to be properly classified.",
}

// For returns the configured suggestions of c, or a generic one.
func For(c taxonomy.Criterion) []string {
	if len(c.Suggestions) > 0 {
		return append([]string(nil), c.Suggestions...)
	}
	return []string{fmt.Sprintf("Create content that demonstrates %s", c.Name)}
}

// PriorityOf ranks a criterion for missing-content guidance.
func PriorityOf(c taxonomy.Criterion) types.Priority {
	if c.HighPriority {
		return types.PriorityHigh
	}
	return types.PriorityMedium
}

// MissingContent lists one suggestion entry per unsatisfied criterion of
// award, in taxonomy order. states must be aligned with award.Criteria.
func MissingContent(award taxonomy.Award, states []model.CriterionState) []types.MissingContentSuggestion {
	out := []types.MissingContentSuggestion{}
	for i, c := range award.Criteria {
		if i < len(states) && states[i].Satisfied {
			continue
		}
		out = append(out, types.MissingContentSuggestion{
			Criterion:   c.Name,
			Priority:    PriorityOf(c),
			Suggestions: For(c),
		})
	}
	return out
}

// Report summarizes the gaps of one award.
func Report(award taxonomy.Award, summary types.ReadinessSummary, states []model.CriterionState) types.MissingCriteriaReport {
	r := types.MissingCriteriaReport{
		AwardKey:      award.Key,
		AwardName:     award.DisplayName,
		Total:         summary.TotalCount,
		Satisfied:     summary.SatisfiedCount,
		Missing:       summary.TotalCount - summary.SatisfiedCount,
		Readiness:     summary.Rate,
		Status:        summary.Status,
		MissingList:   []string{},
		SatisfiedList: []string{},
	}
	for i, c := range award.Criteria {
		if i < len(states) && states[i].Satisfied {
			r.SatisfiedList = append(r.SatisfiedList, c.Name)
		} else {
			r.MissingList = append(r.MissingList, c.Name)
		}
	}
	return r
}

// Recommendations returns the advice for an analysis that produced
// supported awards.
func Recommendations(supported []types.AwardSupport) []types.Recommendation {
	if len(supported) == 0 {
		return []types.Recommendation{ClassificationNeeded}
	}
	return []types.Recommendation{}
}
