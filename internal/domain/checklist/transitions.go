package checklist

import (
	"context"

	"github.com/okian/laurel/internal/domain/model"
)

// Liveness reports whether a previously recorded content reference still
// names an active item.
type Liveness func(ctx context.Context, ref model.ContentRef) (bool, error)

// applyMatch records ref as satisfying the criterion unless a human owns the
// value. Among active references the lowest ordered one is kept, which makes
// the outcome independent of the order matches arrive in.
func applyMatch(ctx context.Context, ref model.ContentRef, live Liveness) model.MutateFunc {
	return func(cur model.CriterionState) (model.CriterionState, bool, error) {
		if cur.Override {
			return cur, false, nil
		}
		if prev := cur.SatisfiedBy; prev != nil && *prev != ref && !ref.Less(*prev) {
			active, err := live(ctx, *prev)
			if err != nil {
				return cur, false, err
			}
			if active {
				return cur, false, nil
			}
		}
		if cur.Satisfied && cur.SatisfiedBy != nil && *cur.SatisfiedBy == ref {
			return cur, false, nil
		}
		r := ref
		cur.Satisfied = true
		cur.SatisfiedBy = &r
		return cur, true, nil
	}
}

func setOverride(satisfied bool) model.MutateFunc {
	return func(cur model.CriterionState) (model.CriterionState, bool, error) {
		if cur.Override && cur.Satisfied == satisfied {
			return cur, false, nil
		}
		cur.Override = true
		cur.Satisfied = satisfied
		return cur, true, nil
	}
}

// clearOverride returns the record to the auto-derived branch: satisfied
// again iff a match was recorded before the override.
func clearOverride() model.MutateFunc {
	return func(cur model.CriterionState) (model.CriterionState, bool, error) {
		if !cur.Override {
			return cur, false, nil
		}
		cur.Override = false
		cur.Satisfied = cur.SatisfiedBy != nil
		return cur, true, nil
	}
}
