// Package readiness derives award readiness from checklist state.
package readiness

import (
	"context"
	"fmt"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/metrics"
)

// Default classification cutoffs.
const (
	DefaultReadyRate       = 1.0
	DefaultNearlyReadyRate = 0.5
)

// Thresholds are the inclusive lower bounds of the two upper tiers.
type Thresholds struct {
	Ready       float64
	NearlyReady float64
}

// DefaultThresholds returns the 1.0 / 0.5 cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Ready: DefaultReadyRate, NearlyReady: DefaultNearlyReadyRate}
}

// Validate checks 0 < NearlyReady <= Ready <= 1.
func (t Thresholds) Validate() error {
	if t.Ready <= 0 || t.Ready > 1 {
		return fmt.Errorf("ready rate %v outside (0,1]", t.Ready)
	}
	if t.NearlyReady <= 0 || t.NearlyReady > t.Ready {
		return fmt.Errorf("nearly ready rate %v outside (0,%v]", t.NearlyReady, t.Ready)
	}
	return nil
}

// Classify maps a satisfaction rate onto a status.
func (t Thresholds) Classify(rate float64) types.ReadinessStatus {
	switch {
	case rate >= t.Ready:
		return types.StatusReadyToApply
	case rate >= t.NearlyReady:
		return types.StatusNearlyReady
	default:
		return types.StatusIncomplete
	}
}

// Summarize builds the summary of award from one state per criterion.
func (t Thresholds) Summarize(award taxonomy.Award, states []model.CriterionState) types.ReadinessSummary {
	s := types.ReadinessSummary{
		AwardKey:   award.Key,
		AwardName:  award.DisplayName,
		TotalCount: len(award.Criteria),
	}
	docs := map[string]struct{}{}
	events := map[string]struct{}{}
	for _, st := range states {
		if !st.Satisfied {
			continue
		}
		s.SatisfiedCount++
		if st.SatisfiedBy == nil {
			continue
		}
		switch st.SatisfiedBy.Kind {
		case model.KindDocument:
			docs[st.SatisfiedBy.ID] = struct{}{}
		case model.KindEvent:
			events[st.SatisfiedBy.ID] = struct{}{}
		}
	}
	s.DocumentCount = len(docs)
	s.EventCount = len(events)
	if s.TotalCount > 0 {
		s.Rate = float64(s.SatisfiedCount) / float64(s.TotalCount)
	}
	s.Status = t.Classify(s.Rate)
	return s
}

// StateReader lists the states of an award, defaults included.
type StateReader interface {
	States(ctx context.Context, awardKey string) ([]model.CriterionState, error)
}

// Aggregator computes summaries on demand. It never writes.
type Aggregator struct {
	tax        *taxonomy.Taxonomy
	states     StateReader
	thresholds Thresholds
}

// NewAggregator builds an Aggregator; invalid thresholds fall back to the
// defaults.
func NewAggregator(tax *taxonomy.Taxonomy, states StateReader, th Thresholds) *Aggregator {
	if th.Validate() != nil {
		th = DefaultThresholds()
	}
	return &Aggregator{tax: tax, states: states, thresholds: th}
}

// Thresholds returns the cutoffs in use.
func (a *Aggregator) Thresholds() Thresholds { return a.thresholds }

// Summarize returns the readiness of one award.
func (a *Aggregator) Summarize(ctx context.Context, awardKey string) (types.ReadinessSummary, error) {
	award, err := a.tax.Award(awardKey)
	if err != nil {
		return types.ReadinessSummary{}, errkind.Wrap("readiness.summarize", err)
	}
	states, err := a.states.States(ctx, awardKey)
	if err != nil {
		return types.ReadinessSummary{}, errkind.Wrap("readiness.summarize", err)
	}
	return a.SummarizeStates(award, states), nil
}

// SummarizeStates summarizes states already read by the caller.
func (a *Aggregator) SummarizeStates(award taxonomy.Award, states []model.CriterionState) types.ReadinessSummary {
	s := a.thresholds.Summarize(award, states)
	metrics.UpdateAwardRate(s.AwardKey, s.Rate)
	return s
}

// SummarizeAll returns one summary per award in taxonomy order.
func (a *Aggregator) SummarizeAll(ctx context.Context) ([]types.ReadinessSummary, error) {
	awards := a.tax.Awards()
	out := make([]types.ReadinessSummary, 0, len(awards))
	ready := 0
	for _, award := range awards {
		s, err := a.Summarize(ctx, award.Key)
		if err != nil {
			return nil, err
		}
		if s.Status == types.StatusReadyToApply {
			ready++
		}
		out = append(out, s)
	}
	metrics.UpdateAwardsReady(ready)
	return out, nil
}
