// Package checklist applies match results and manual overrides to the
// persisted per-criterion state.
package checklist

import (
	"context"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// Store is the persistence the book needs.
type Store interface {
	Get(ctx context.Context, key model.CriterionKey) (model.CriterionState, error)
	Lookup(ctx context.Context, key model.CriterionKey) (model.CriterionState, bool, error)
	Mutate(ctx context.Context, key model.CriterionKey, fn model.MutateFunc) (model.CriterionState, bool, error)
	List(ctx context.Context, awardKey string) ([]model.CriterionState, error)
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the book logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// Book validates keys against the taxonomy and runs state transitions
// through the store's per-key atomic Mutate.
type Book struct {
	tax    *taxonomy.Taxonomy
	store  Store
	logger logger.Logger
}

// New builds a Book.
func New(tax *taxonomy.Taxonomy, store Store, opts ...Option) *Book {
	b := &Book{tax: tax, store: store}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Get()
	}
	return b
}

// Taxonomy returns the taxonomy keys are validated against.
func (b *Book) Taxonomy() *taxonomy.Taxonomy { return b.tax }

// Get returns the state of a criterion, materializing it when absent.
func (b *Book) Get(ctx context.Context, key model.CriterionKey) (model.CriterionState, error) {
	const op = "checklist.get"
	if err := b.tax.Check(key); err != nil {
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	st, err := b.store.Get(ctx, key)
	if err != nil {
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	return st, nil
}

// UpsertFromMatch records that ref matched the criterion. It is a no-op
// under an override and when the state already reflects the match.
func (b *Book) UpsertFromMatch(ctx context.Context, key model.CriterionKey, ref model.ContentRef, live Liveness) (model.CriterionState, bool, error) {
	const op = "checklist.upsert_from_match"
	if err := b.tax.Check(key); err != nil {
		return model.CriterionState{}, false, errkind.Wrap(op, err)
	}
	st, changed, err := b.store.Mutate(ctx, key, applyMatch(ctx, ref, live))
	if err != nil {
		b.logFailure(ctx, op, key, err)
		return model.CriterionState{}, false, errkind.Wrap(op, err)
	}
	if changed {
		metrics.RecordCriterionTransition(key.AwardKey, "satisfied")
		b.logger.Debug(ctx, "criterion satisfied by match",
			logger.String("key", key.String()),
			logger.String("content", ref.String()))
	}
	return st, changed, nil
}

// SetOverride pins the criterion to the given value until ClearOverride.
func (b *Book) SetOverride(ctx context.Context, key model.CriterionKey, satisfied bool) (model.CriterionState, error) {
	const op = "checklist.set_override"
	if err := b.tax.Check(key); err != nil {
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	st, changed, err := b.store.Mutate(ctx, key, setOverride(satisfied))
	if err != nil {
		b.logFailure(ctx, op, key, err)
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	if changed {
		metrics.RecordCriterionTransition(key.AwardKey, "override_set")
		b.logger.Info(ctx, "criterion override set",
			logger.String("key", key.String()),
			logger.Bool("satisfied", satisfied))
	}
	return st, nil
}

// ClearOverride hands the criterion back to automatic matching.
func (b *Book) ClearOverride(ctx context.Context, key model.CriterionKey) (model.CriterionState, error) {
	const op = "checklist.clear_override"
	if err := b.tax.Check(key); err != nil {
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	st, changed, err := b.store.Mutate(ctx, key, clearOverride())
	if err != nil {
		b.logFailure(ctx, op, key, err)
		return model.CriterionState{}, errkind.Wrap(op, err)
	}
	if changed {
		metrics.RecordCriterionTransition(key.AwardKey, "override_cleared")
		b.logger.Info(ctx, "criterion override cleared",
			logger.String("key", key.String()),
			logger.Bool("satisfied", st.Satisfied))
	}
	return st, nil
}

// Materialize creates the default record of every criterion that has none.
func (b *Book) Materialize(ctx context.Context) error {
	for _, key := range b.tax.Keys() {
		if _, err := b.store.Get(ctx, key); err != nil {
			return errkind.Wrap("checklist.materialize", err)
		}
	}
	return nil
}

// States returns one state per criterion of the award in taxonomy order,
// substituting defaults for records that do not exist yet. It never writes.
func (b *Book) States(ctx context.Context, awardKey string) ([]model.CriterionState, error) {
	const op = "checklist.states"
	award, err := b.tax.Award(awardKey)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	stored, err := b.store.List(ctx, awardKey)
	if err != nil {
		return nil, errkind.Wrap(op, err)
	}
	byName := make(map[string]model.CriterionState, len(stored))
	for _, st := range stored {
		byName[st.Criterion] = st
	}
	out := make([]model.CriterionState, 0, len(award.Criteria))
	for _, c := range award.Criteria {
		st, ok := byName[c.Name]
		if !ok {
			st = model.DefaultState(c.Key())
		}
		out = append(out, st)
	}
	return out, nil
}

func (b *Book) logFailure(ctx context.Context, op string, key model.CriterionKey, err error) {
	kind := errkind.KindOf(err)
	metrics.RecordErrorByComponent("checklist", kind.String())
	b.logger.Error(ctx, "criterion state update failed",
		logger.String("op", op),
		logger.String("key", key.String()),
		logger.String("kind", kind.String()),
		logger.Error(err))
}
