package analysis

import (
	"context"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/matcher"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/suggest"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
)

// supporting maps each criterion to the active items currently matching it.
func (e *Engine) supporting(ctx context.Context) (map[model.CriterionKey][]types.SupportingContent, error) {
	items, err := e.source.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := map[model.CriterionKey][]types.SupportingContent{}
	for _, item := range items {
		for _, r := range matcher.Matched(e.matcher.Match(item)) {
			out[r.Key()] = append(out[r.Key()], types.SupportingContent{
				Content:    item.Ref(),
				Title:      item.Title,
				Confidence: r.Confidence,
			})
		}
	}
	return out, nil
}

func (e *Engine) checklist(ctx context.Context, award taxonomy.Award, support map[model.CriterionKey][]types.SupportingContent) (types.Checklist, error) {
	states, err := e.book.States(ctx, award.Key)
	if err != nil {
		return types.Checklist{}, err
	}
	summary := e.agg.SummarizeStates(award, states)
	cl := types.Checklist{
		AwardKey:      award.Key,
		AwardName:     award.DisplayName,
		DocumentCount: summary.DocumentCount,
		EventCount:    summary.EventCount,
		Checklist:     make([]types.ChecklistEntry, 0, len(award.Criteria)),
		Readiness:     summary,
	}
	for i, c := range award.Criteria {
		st := states[i]
		entry := types.ChecklistEntry{
			Criterion:         c.Name,
			Satisfied:         st.Satisfied,
			Override:          st.Override,
			SatisfiedBy:       st.SatisfiedBy,
			UpdatedAt:         st.UpdatedAt,
			SupportingContent: support[c.Key()],
			Suggestions:       []string{},
		}
		if entry.SupportingContent == nil {
			entry.SupportingContent = []types.SupportingContent{}
		}
		if !st.Satisfied {
			entry.Suggestions = suggest.For(c)
		}
		cl.Checklist = append(cl.Checklist, entry)
	}
	return cl, nil
}

// GetAllChecklists returns the checklist of every award in taxonomy order.
func (e *Engine) GetAllChecklists(ctx context.Context) ([]types.Checklist, error) {
	const op = "analysis.get_all_checklists"
	support, err := e.supporting(ctx)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	awards := e.tax.Awards()
	out := make([]types.Checklist, 0, len(awards))
	for _, award := range awards {
		cl, err := e.checklist(ctx, award, support)
		if err != nil {
			return nil, errkind.Wrap(op, err)
		}
		out = append(out, cl)
	}
	return out, nil
}

// GetAwardChecklist returns the detailed checklist of one award.
func (e *Engine) GetAwardChecklist(ctx context.Context, awardKey string) (types.Checklist, error) {
	const op = "analysis.get_award_checklist"
	award, err := e.tax.Award(awardKey)
	if err != nil {
		return types.Checklist{}, errkind.Wrap(op, err)
	}
	support, err := e.supporting(ctx)
	if err != nil {
		return types.Checklist{}, errkind.Wrap(op, err)
	}
	cl, err := e.checklist(ctx, award, support)
	if err != nil {
		return types.Checklist{}, errkind.Wrap(op, err)
	}
	return cl, nil
}

// GetReadinessSummary returns the readiness of every award.
func (e *Engine) GetReadinessSummary(ctx context.Context) ([]types.ReadinessSummary, error) {
	out, err := e.agg.SummarizeAll(ctx)
	if err != nil {
		return nil, errkind.Wrap("analysis.get_readiness_summary", err)
	}
	return out, nil
}

// UpdateCriterionStatus sets a manual override. Unknown keys fail with a
// validation error and create nothing.
func (e *Engine) UpdateCriterionStatus(ctx context.Context, awardKey, criterion string, satisfied bool) (model.CriterionState, error) {
	return e.book.SetOverride(ctx, model.CriterionKey{AwardKey: awardKey, Criterion: criterion}, satisfied)
}

// ClearOverride returns a criterion to automatic matching.
func (e *Engine) ClearOverride(ctx context.Context, awardKey, criterion string) (model.CriterionState, error) {
	return e.book.ClearOverride(ctx, model.CriterionKey{AwardKey: awardKey, Criterion: criterion})
}

// GetCriterionState returns the current record of one criterion.
func (e *Engine) GetCriterionState(ctx context.Context, awardKey, criterion string) (model.CriterionState, error) {
	return e.book.Get(ctx, model.CriterionKey{AwardKey: awardKey, Criterion: criterion})
}

// GetMissingContentSuggestions lists authoring guidance for the unsatisfied
// criteria of an award.
func (e *Engine) GetMissingContentSuggestions(ctx context.Context, awardKey string) ([]types.MissingContentSuggestion, error) {
	const op = "analysis.get_missing_content_suggestions"
	award, err := e.tax.Award(awardKey)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	states, err := e.book.States(ctx, awardKey)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	return suggest.MissingContent(award, states), nil
}

// GetMissingCriteriaReport summarizes the gaps of every award.
func (e *Engine) GetMissingCriteriaReport(ctx context.Context) ([]types.MissingCriteriaReport, error) {
	const op = "analysis.get_missing_criteria_report"
	awards := e.tax.Awards()
	out := make([]types.MissingCriteriaReport, 0, len(awards))
	for _, award := range awards {
		states, err := e.book.States(ctx, award.Key)
		if err != nil {
			return nil, errkind.Wrap(op, err)
		}
		out = append(out, suggest.Report(award, e.agg.SummarizeStates(award, states), states))
	}
	return out, nil
}
