// Package service composes the analysis engine with its storage, content
// and async adapters behind the operations used by the HTTP API and CLI.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/internal/adapters/mq/queue"
	"github.com/okian/laurel/internal/adapters/mq/worker"
	"github.com/okian/laurel/internal/adapters/repository"
	"github.com/okian/laurel/internal/adapters/sqlitedb"
	"github.com/okian/laurel/internal/domain/analysis"
	"github.com/okian/laurel/internal/domain/dedupe"
	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/matcher"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/readiness"
	"github.com/okian/laurel/internal/domain/taxonomy"
	"github.com/okian/laurel/internal/domain/types"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// ErrNotStarted is returned by operations called outside Start/Stop.
var ErrNotStarted = errors.New("service not started")

// Submission acknowledges an async analysis request.
type Submission = types.Submission

// Service owns the engine and its adapters.
type Service struct {
	mu sync.RWMutex

	// Core components
	db       *sql.DB
	store    repository.Store
	source   analysis.Source
	ownsSrc  bool
	tax      *taxonomy.Taxonomy
	engine   *analysis.Engine
	deduper  dedupe.Deduper
	requests *queue.InMemoryQueue
	pool     *worker.Pool

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	batchConcurrency   int
	storeRetryAttempts int
	dbPath             string
	taxonomyFile       string
	matchThreshold     float64
	readyRate          float64
	nearlyReadyRate    float64

	started bool
	cancel  context.CancelFunc
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU(),
		queueSize:          1024,
		dedupeSize:         10000,
		batchConcurrency:   runtime.NumCPU(),
		storeRetryAttempts: 5,
		matchThreshold:     matcher.DefaultThreshold,
		readyRate:          readiness.DefaultReadyRate,
		nearlyReadyRate:    readiness.DefaultNearlyReadyRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens storage and starts the worker pool.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting readiness service...")

	runCtx, cancel := context.WithCancel(context.Background())
	defer func() {
		if err != nil {
			cancel()
			s.release()
		}
	}()

	if s.tax == nil {
		if s.tax, err = taxonomy.Resolve(s.taxonomyFile); err != nil {
			return fmt.Errorf("load taxonomy: %w", err)
		}
	}
	if err = s.openStorage(ctx, runCtx); err != nil {
		return err
	}

	m, err := matcher.New(s.tax, matcher.WithThreshold(s.matchThreshold))
	if err != nil {
		return fmt.Errorf("build matcher: %w", err)
	}
	s.engine, err = analysis.New(s.tax, m, s.store, s.source,
		analysis.WithLogger(s.logger.Named("analysis")),
		analysis.WithConcurrency(s.batchConcurrency),
		analysis.WithThresholds(readiness.Thresholds{Ready: s.readyRate, NearlyReady: s.nearlyReadyRate}),
	)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	s.deduper = dedupe.NewWindow(dedupe.WithMaxSize(s.dedupeSize), dedupe.WithTTL(time.Hour))
	s.requests = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.requests, worker.ProcessorFunc(s.process))
	s.pool.Start(runCtx)

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "readiness service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("awards", len(s.tax.Awards())),
		logger.Int("criteria", len(s.tax.Keys())),
		logger.String("storage", s.storageKind()),
	)
	return nil
}

func (s *Service) openStorage(ctx, runCtx context.Context) error {
	storeOpts := []repository.Option{
		repository.WithRetryAttempts(s.storeRetryAttempts),
		repository.WithLogger(s.logger.Named("store")),
	}
	if s.dbPath == "" {
		s.store = repository.NewMemoryStore(runCtx, storeOpts...)
		if s.source == nil {
			s.source, s.ownsSrc = content.NewMemorySource(), true
		}
		return nil
	}

	db, err := sqlitedb.Open(ctx, s.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.db = db
	if s.store, err = repository.NewSQLiteStore(runCtx, db, storeOpts...); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if s.source == nil {
		s.source, s.ownsSrc = content.NewSQLiteSource(db), true
	}
	return nil
}

func (s *Service) storageKind() string {
	if s.db != nil {
		return "sqlite"
	}
	return "memory"
}

// release closes storage. Must hold s.mu.
func (s *Service) release() {
	if s.ownsSrc {
		s.source, s.ownsSrc = nil, false
	}
	if s.store != nil {
		_ = s.store.Close()
		s.store = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// Stop drains pending async requests and closes storage.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping readiness service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()
	s.release()

	s.started = false
	s.logger.Info(ctx, "readiness service stopped")
}

func (s *Service) running(op string) (*analysis.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, errkind.WrapKind(op, errkind.Internal, ErrNotStarted)
	}
	return s.engine, nil
}

// Taxonomy returns the loaded taxonomy, nil before Start.
func (s *Service) Taxonomy() *taxonomy.Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tax
}

// AnalyzeSingleContent analyzes one item synchronously.
func (s *Service) AnalyzeSingleContent(ctx context.Context, kind model.ContentKind, id string) (types.AnalysisResult, error) {
	e, err := s.running("service.analyze_single")
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return e.AnalyzeSingleContent(ctx, kind, id)
}

// AnalyzeAllContent analyzes the whole active corpus.
func (s *Service) AnalyzeAllContent(ctx context.Context) (types.BatchAnalysisResult, error) {
	e, err := s.running("service.analyze_all")
	if err != nil {
		return types.BatchAnalysisResult{}, err
	}
	return e.AnalyzeAllContent(ctx)
}

// GetAllChecklists returns every award checklist.
func (s *Service) GetAllChecklists(ctx context.Context) ([]types.Checklist, error) {
	e, err := s.running("service.get_all_checklists")
	if err != nil {
		return nil, err
	}
	return e.GetAllChecklists(ctx)
}

// GetAwardChecklist returns one award checklist.
func (s *Service) GetAwardChecklist(ctx context.Context, awardKey string) (types.Checklist, error) {
	e, err := s.running("service.get_award_checklist")
	if err != nil {
		return types.Checklist{}, err
	}
	return e.GetAwardChecklist(ctx, awardKey)
}

// GetReadinessSummary returns the readiness of every award.
func (s *Service) GetReadinessSummary(ctx context.Context) ([]types.ReadinessSummary, error) {
	e, err := s.running("service.get_readiness_summary")
	if err != nil {
		return nil, err
	}
	return e.GetReadinessSummary(ctx)
}

// UpdateCriterionStatus sets a manual override.
func (s *Service) UpdateCriterionStatus(ctx context.Context, awardKey, criterion string, satisfied bool) (model.CriterionState, error) {
	e, err := s.running("service.update_criterion_status")
	if err != nil {
		return model.CriterionState{}, err
	}
	return e.UpdateCriterionStatus(ctx, awardKey, criterion, satisfied)
}

// ClearOverride hands a criterion back to automatic matching.
func (s *Service) ClearOverride(ctx context.Context, awardKey, criterion string) (model.CriterionState, error) {
	e, err := s.running("service.clear_override")
	if err != nil {
		return model.CriterionState{}, err
	}
	return e.ClearOverride(ctx, awardKey, criterion)
}

// GetCriterionState returns the current record of one criterion.
func (s *Service) GetCriterionState(ctx context.Context, awardKey, criterion string) (model.CriterionState, error) {
	e, err := s.running("service.get_criterion_state")
	if err != nil {
		return model.CriterionState{}, err
	}
	return e.GetCriterionState(ctx, awardKey, criterion)
}

// GetMissingContentSuggestions returns authoring guidance for an award.
func (s *Service) GetMissingContentSuggestions(ctx context.Context, awardKey string) ([]types.MissingContentSuggestion, error) {
	e, err := s.running("service.get_missing_content_suggestions")
	if err != nil {
		return nil, err
	}
	return e.GetMissingContentSuggestions(ctx, awardKey)
}

// GetMissingCriteriaReport returns the gap report of every award.
func (s *Service) GetMissingCriteriaReport(ctx context.Context) ([]types.MissingCriteriaReport, error) {
	e, err := s.running("service.get_missing_criteria_report")
	if err != nil {
		return nil, err
	}
	return e.GetMissingCriteriaReport(ctx)
}

// SubmitContentAnalysis queues an item for asynchronous analysis. A
// submission for an item that is already pending is acknowledged as a
// duplicate and not queued again.
func (s *Service) SubmitContentAnalysis(ctx context.Context, kind model.ContentKind, id string) (Submission, error) {
	const op = "service.submit_content_analysis"
	if _, err := s.running(op); err != nil {
		return Submission{}, err
	}
	ref := model.ContentRef{Kind: kind, ID: id}
	if err := ref.Validate(); err != nil {
		return Submission{}, errkind.WrapKind(op, errkind.Validation, err)
	}

	key := ref.String()
	if !s.deduper.Claim(ctx, key) {
		metrics.RecordQueueDuplicate()
		s.logger.Debug(ctx, "duplicate submission collapsed", logger.String("content", key))
		return Submission{Content: ref, Duplicate: true}, nil
	}

	r := model.AnalysisRequest{RequestID: uuid.NewString(), Ref: ref, SubmittedAt: time.Now().UTC()}
	if err := s.requests.Enqueue(ctx, r); err != nil {
		s.deduper.Release(ctx, key)
		s.logger.Warn(ctx, "analysis request rejected",
			logger.String("content", key),
			logger.Error(err))
		return Submission{}, errkind.Wrap(op, err)
	}
	return Submission{RequestID: r.RequestID, Content: ref}, nil
}

func (s *Service) process(ctx context.Context, r model.AnalysisRequest) error {
	defer s.deduper.Release(ctx, r.Ref.String())
	_, err := s.engine.AnalyzeSingleContent(ctx, r.Ref.Kind, r.Ref.ID)
	return err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"storage":     s.storageKind(),
	}
	if !s.started {
		return stats
	}

	queueLen := s.requests.Len()
	stats["queueLength"] = queueLen
	stats["pendingSubmissions"] = s.deduper.Size()
	stats["processed"] = s.pool.Processed()
	stats["failed"] = s.pool.Failed()
	stats["awards"] = len(s.tax.Awards())
	stats["criteria"] = len(s.tax.Keys())
	if n, err := s.store.Count(context.Background()); err == nil {
		stats["storeRecords"] = n
		metrics.UpdateStoreRecords(n)
	}
	metrics.UpdateQueueDepth(queueLen)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}
