package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/matcher"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/suggest"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

const (
	modeSingle = "single"
	modeBatch  = "batch"
)

// AnalyzeSingleContent matches one active item against every criterion and
// records the matches. Zero matches is a valid outcome.
func (e *Engine) AnalyzeSingleContent(ctx context.Context, kind model.ContentKind, id string) (types.AnalysisResult, error) {
	const op = "analysis.analyze_single"
	start := time.Now()

	item, err := e.lookup(ctx, op, kind, id)
	if err != nil {
		e.observe(modeSingle, start, err)
		return types.AnalysisResult{}, err
	}
	ref := item.Ref()

	results := e.matcher.Match(item)
	if err := e.record(ctx, ref, results); err != nil {
		err = errkind.Wrap(op, err)
		e.observe(modeSingle, start, err)
		return types.AnalysisResult{}, err
	}

	satisfied, err := e.satisfiedCriteria(ctx, ref)
	if err != nil {
		err = errkind.Wrap(op, err)
		e.observe(modeSingle, start, err)
		return types.AnalysisResult{}, err
	}

	matched := matcher.Matched(results)
	for _, r := range matched {
		metrics.RecordCriterionMatched(r.AwardKey)
	}
	supported := e.matcher.SupportedAwards(matched)
	res := types.AnalysisResult{
		Content:           ref,
		SupportedAwards:   supported,
		SatisfiedCriteria: satisfied,
		KeywordsFound:     matcher.KeywordsFound(matched),
		ConfidenceScore:   matcher.MaxConfidence(matched),
		Matches:           matched,
		Recommendations:   suggest.Recommendations(supported),
	}
	e.observe(modeSingle, start, nil)
	e.logger.Debug(ctx, "content analyzed",
		logger.String("content", ref.String()),
		logger.Int("matches", len(matched)),
		logger.Int("confidence", res.ConfidenceScore))
	return res, nil
}

// satisfiedCriteria lists every satisfied criterion across all awards,
// flagging those attributed to ref.
func (e *Engine) satisfiedCriteria(ctx context.Context, ref model.ContentRef) ([]types.SatisfiedCriterion, error) {
	out := []types.SatisfiedCriterion{}
	for _, award := range e.tax.Awards() {
		states, err := e.book.States(ctx, award.Key)
		if err != nil {
			return nil, err
		}
		for _, st := range states {
			if !st.Satisfied {
				continue
			}
			out = append(out, types.SatisfiedCriterion{
				AwardKey:      st.AwardKey,
				Criterion:     st.Criterion,
				Override:      st.Override,
				SatisfiedBy:   st.SatisfiedBy,
				ByThisContent: !st.Override && st.SatisfiedBy != nil && *st.SatisfiedBy == ref,
			})
		}
	}
	return out, nil
}

// AnalyzeAllContent analyzes every active item. Matching runs in parallel;
// writes go through the per-key upsert, so the final state does not depend
// on processing order. Cancellation stops between items and keeps what was
// already written.
func (e *Engine) AnalyzeAllContent(ctx context.Context) (types.BatchAnalysisResult, error) {
	const op = "analysis.analyze_all"
	start := time.Now()
	startedAt := e.now()
	runID := uuid.NewString()
	log := e.logger.Named("batch")

	items, err := e.source.ListActive(ctx)
	if err != nil {
		err = errkind.Wrap(op, err)
		e.observe(modeBatch, start, err)
		return types.BatchAnalysisResult{}, err
	}
	if err := e.book.Materialize(ctx); err != nil {
		err = errkind.Wrap(op, err)
		e.observe(modeBatch, start, err)
		return types.BatchAnalysisResult{}, err
	}
	log.Info(ctx, "batch analysis started",
		logger.String("run_id", runID),
		logger.Int("items", len(items)),
		logger.Int("concurrency", e.concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return e.record(gctx, item.Ref(), e.matcher.Match(item))
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		metrics.RecordBatch(len(items), msSince(start), cancelled)
		log.Warn(ctx, "batch analysis stopped",
			logger.String("run_id", runID),
			logger.Bool("cancelled", cancelled),
			logger.Error(err))
		err = errkind.Wrap(op, err)
		e.observe(modeBatch, start, err)
		return types.BatchAnalysisResult{}, err
	}

	res, err := e.aggregate(ctx, items)
	if err != nil {
		err = errkind.Wrap(op, err)
		e.observe(modeBatch, start, err)
		return types.BatchAnalysisResult{}, err
	}
	res.RunID = runID
	res.StartedAt = startedAt
	res.Duration = time.Since(start)

	metrics.RecordBatch(len(items), msSince(start), false)
	e.observe(modeBatch, start, nil)
	log.Info(ctx, "batch analysis finished",
		logger.String("run_id", runID),
		logger.Int("criteria_satisfied", res.TotalCriteriaSatisfied),
		logger.Int("awards_ready", res.AwardsReady),
		logger.Duration("duration", res.Duration))
	return res, nil
}

func (e *Engine) aggregate(ctx context.Context, items []model.ContentItem) (types.BatchAnalysisResult, error) {
	res := types.BatchAnalysisResult{
		AwardBreakdown:  []types.ReadinessSummary{},
		MissingCriteria: []model.CriterionKey{},
	}
	for _, it := range items {
		switch it.Kind {
		case model.KindDocument:
			res.TotalDocuments++
		case model.KindEvent:
			res.TotalEvents++
		}
	}
	for _, award := range e.tax.Awards() {
		states, err := e.book.States(ctx, award.Key)
		if err != nil {
			return res, err
		}
		s := e.agg.SummarizeStates(award, states)
		res.AwardBreakdown = append(res.AwardBreakdown, s)
		res.TotalCriteriaSatisfied += s.SatisfiedCount
		if s.Status == types.StatusReadyToApply {
			res.AwardsReady++
		}
		for _, st := range states {
			if !st.Satisfied {
				res.MissingCriteria = append(res.MissingCriteria, st.CriterionKey)
			}
		}
	}
	metrics.UpdateAwardsReady(res.AwardsReady)
	return res, nil
}

func (e *Engine) observe(mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errkind.KindOf(err).String()
		metrics.RecordErrorByComponent("analysis", outcome)
	}
	metrics.RecordAnalysis(mode, outcome, msSince(start))
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
