// Package analysis coordinates matching, checklist state and readiness
// into the operations exposed to callers.
package analysis

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/okian/laurel/internal/domain/checklist"
	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/matcher"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/readiness"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/pkg/logger"
)

// Source is the content collaborator.
type Source interface {
	ListActive(ctx context.Context, kinds ...model.ContentKind) ([]model.ContentItem, error)
	Get(ctx context.Context, kind model.ContentKind, id string) (model.ContentItem, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithThresholds sets the readiness cutoffs.
func WithThresholds(th readiness.Thresholds) Option {
	return func(e *Engine) { e.thresholds = th }
}

// WithConcurrency bounds how many items batch analysis matches at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is safe for concurrent use.
type Engine struct {
	tax     *taxonomy.Taxonomy
	matcher *matcher.Matcher
	book    *checklist.Book
	agg     *readiness.Aggregator
	source  Source

	thresholds  readiness.Thresholds
	concurrency int
	now         func() time.Time
	logger      logger.Logger
}

// New wires an engine over a checklist store and a content source.
func New(tax *taxonomy.Taxonomy, m *matcher.Matcher, store checklist.Store, source Source, opts ...Option) (*Engine, error) {
	if tax == nil || m == nil || store == nil || source == nil {
		return nil, errors.New("analysis: taxonomy, matcher, store and source are required")
	}
	e := &Engine{
		tax:         tax,
		matcher:     m,
		source:      source,
		thresholds:  readiness.DefaultThresholds(),
		concurrency: runtime.GOMAXPROCS(0),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, errkind.WrapKind("analysis.new", errkind.Validation, err)
	}
	e.book = checklist.New(tax, store, checklist.WithLogger(e.logger))
	e.agg = readiness.NewAggregator(tax, e.book, e.thresholds)
	return e, nil
}

// Taxonomy returns the taxonomy the engine was built with.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy { return e.tax }

// Thresholds returns the readiness cutoffs in use.
func (e *Engine) Thresholds() readiness.Thresholds { return e.thresholds }

// isActive is the liveness check used when a match competes with an
// existing satisfying reference.
func (e *Engine) isActive(ctx context.Context, ref model.ContentRef) (bool, error) {
	item, err := e.source.Get(ctx, ref.Kind, ref.ID)
	if errors.Is(err, model.ErrContentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return item.Active(), nil
}

// record writes every matched result of one item through the per-key
// serialized upsert.
func (e *Engine) record(ctx context.Context, ref model.ContentRef, results []model.MatchResult) error {
	for _, r := range results {
		if !r.Matched {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, _, err := e.book.UpsertFromMatch(ctx, r.Key(), ref, e.isActive); err != nil {
			return err
		}
	}
	return nil
}

// lookup resolves a content reference to an active item.
func (e *Engine) lookup(ctx context.Context, op string, kind model.ContentKind, id string) (model.ContentItem, error) {
	ref := model.ContentRef{Kind: kind, ID: id}
	if err := ref.Validate(); err != nil {
		return model.ContentItem{}, errkind.WrapKind(op, errkind.Validation, err)
	}
	item, err := e.source.Get(ctx, kind, id)
	if errors.Is(err, model.ErrContentNotFound) {
		return model.ContentItem{}, errkind.WrapKind(op, errkind.NotFound, err)
	}
	if err != nil {
		return model.ContentItem{}, errkind.Wrap(op, err)
	}
	if !item.Active() {
		return model.ContentItem{}, errkind.New(op, errkind.NotFound, "%s is archived", ref)
	}
	return item, nil
}
