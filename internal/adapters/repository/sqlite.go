package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/internal/adapters/sqlitedb"
	"github.com/okian/laurel/internal/domain/errkind"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

const selectState = `SELECT award_key, criterion, satisfied, override, satisfied_by_kind, satisfied_by_id, updated_at, version FROM criterion_state`

// SQLiteStore persists checklist state in the criterion_state table.
// It does not own the *sql.DB.
type SQLiteStore struct {
	cfg    settings
	db     *sql.DB
	locks  *keyLocks
	closed atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewSQLiteStore wraps an opened and migrated database.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("sqlite store: nil db")
	}
	cfg := newSettings(opts)
	s := &SQLiteStore{
		cfg:      cfg,
		db:       db,
		locks:    newKeyLocks(cfg.shardCount),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go runMetricsUpdater(ctx, &s.wg, s.stopChan, cfg.metricsUpdateInterval, func() {
		if n, err := s.Count(ctx); err == nil {
			metrics.UpdateStoreRecords(n)
		}
	})
	return s, nil
}

// Close stops background work; the database handle stays open.
func (s *SQLiteStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *SQLiteStore) check(ctx context.Context, key *model.CriterionKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if key != nil && !validKey(*key) {
		return ErrInvalidKey
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (model.CriterionState, error) {
	var (
		st                  model.CriterionState
		satisfied, override int
		refKind, refID      sql.NullString
		updatedAt           int64
	)
	if err := row.Scan(&st.AwardKey, &st.Criterion, &satisfied, &override, &refKind, &refID, &updatedAt, &st.Version); err != nil {
		return model.CriterionState{}, err
	}
	st.Satisfied = satisfied != 0
	st.Override = override != 0
	if refKind.Valid && refID.Valid {
		st.SatisfiedBy = &model.ContentRef{Kind: model.ContentKind(refKind.String), ID: refID.String}
	}
	st.UpdatedAt = sqlitedb.FromMillis(updatedAt)
	return st, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func refColumns(ref *model.ContentRef) (sql.NullString, sql.NullString) {
	if ref == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: string(ref.Kind), Valid: true}, sql.NullString{String: ref.ID, Valid: true}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) load(ctx context.Context, q queryer, key model.CriterionKey) (model.CriterionState, bool, error) {
	st, err := scanState(q.QueryRowContext(ctx, selectState+` WHERE award_key = ? AND criterion = ?`, key.AwardKey, key.Criterion))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultState(key), false, nil
	}
	if err != nil {
		return model.CriterionState{}, false, fmt.Errorf("load %s: %w", key, err)
	}
	return st, true, nil
}

func (s *SQLiteStore) materialize(ctx context.Context, q queryer, key model.CriterionKey) (model.CriterionState, error) {
	st, found, err := s.load(ctx, q, key)
	if err != nil || found {
		return st, err
	}
	st.UpdatedAt = s.cfg.now()
	st.Version = 1
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO criterion_state (award_key, criterion, satisfied, override, updated_at, version) VALUES (?, ?, 0, 0, ?, 1)`,
		key.AwardKey, key.Criterion, sqlitedb.ToMillis(st.UpdatedAt),
	); err != nil {
		return model.CriterionState{}, fmt.Errorf("create %s: %w", key, err)
	}
	st, _, err = s.load(ctx, q, key)
	return st, err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key model.CriterionKey) (model.CriterionState, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, err
	}
	defer observe("get", time.Now())

	unlock := s.locks.lock(key)
	defer unlock()
	return s.materialize(ctx, s.db, key)
}

// Lookup implements Store.
func (s *SQLiteStore) Lookup(ctx context.Context, key model.CriterionKey) (model.CriterionState, bool, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, false, err
	}
	return s.load(ctx, s.db, key)
}

// Mutate implements Store. Busy databases and version conflicts are retried
// with linear backoff; exhausting the retries yields ErrConflict.
func (s *SQLiteStore) Mutate(ctx context.Context, key model.CriterionKey, fn model.MutateFunc) (model.CriterionState, bool, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, false, err
	}
	defer observe("mutate", time.Now())

	unlock := s.locks.lock(key)
	defer unlock()

	var lastErr error
	for attempt := 1; attempt <= s.cfg.retryAttempts; attempt++ {
		st, changed, err := s.mutateOnce(ctx, key, fn)
		if err == nil {
			return st, changed, nil
		}
		if !errors.Is(err, ErrConflict) && !sqlitedb.IsBusy(err) {
			return model.CriterionState{}, false, err
		}
		lastErr = err
		metrics.RecordStoreConflict()
		s.cfg.logger.Warn(ctx, "criterion state write conflict, retrying",
			logger.String("key", key.String()),
			logger.Int("attempt", attempt),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return model.CriterionState{}, false, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.cfg.retryBackoff):
		}
	}
	s.cfg.logger.Error(ctx, "criterion state write conflict not resolved",
		logger.String("key", key.String()),
		logger.Error(lastErr))
	return model.CriterionState{}, false, errkind.WrapKind("repository.mutate", errkind.Conflict,
		fmt.Errorf("%w: %s after %d attempts: %v", ErrConflict, key, s.cfg.retryAttempts, lastErr))
}

func (s *SQLiteStore) mutateOnce(ctx context.Context, key model.CriterionKey, fn model.MutateFunc) (model.CriterionState, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.CriterionState{}, false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := s.materialize(ctx, tx, key)
	if err != nil {
		return model.CriterionState{}, false, err
	}
	next, changed, err := fn(cur.Clone())
	if err != nil {
		return cur, false, err
	}
	if !changed {
		if err := tx.Commit(); err != nil {
			return model.CriterionState{}, false, fmt.Errorf("commit: %w", err)
		}
		return cur, false, nil
	}

	next.CriterionKey = key
	next.Version = cur.Version + 1
	next.UpdatedAt = s.cfg.now()
	refKind, refID := refColumns(next.SatisfiedBy)
	res, err := tx.ExecContext(ctx, `UPDATE criterion_state
SET satisfied = ?, override = ?, satisfied_by_kind = ?, satisfied_by_id = ?, updated_at = ?, version = ?
WHERE award_key = ? AND criterion = ? AND version = ?`,
		boolInt(next.Satisfied), boolInt(next.Override), refKind, refID, sqlitedb.ToMillis(next.UpdatedAt), next.Version,
		key.AwardKey, key.Criterion, cur.Version,
	)
	if err != nil {
		return model.CriterionState{}, false, fmt.Errorf("update %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.CriterionState{}, false, fmt.Errorf("update %s: %w", key, err)
	} else if n == 0 {
		return model.CriterionState{}, false, ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return model.CriterionState{}, false, fmt.Errorf("commit: %w", err)
	}
	next.UpdatedAt = sqlitedb.FromMillis(sqlitedb.ToMillis(next.UpdatedAt))
	return next.Clone(), true, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, awardKey string) ([]model.CriterionState, error) {
	if err := s.check(ctx, nil); err != nil {
		return nil, err
	}
	defer observe("list", time.Now())

	query := selectState + ` ORDER BY award_key, criterion`
	args := []any{}
	if awardKey != "" {
		query = selectState + ` WHERE award_key = ? ORDER BY criterion`
		args = append(args, awardKey)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list criterion state: %w", err)
	}
	defer rows.Close()

	var out []model.CriterionState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan criterion state: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criterion state: %w", err)
	}
	sortStates(out)
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := s.check(ctx, nil); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM criterion_state`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count criterion state: %w", err)
	}
	return n, nil
}
