package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/sqlitedb"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/logger"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init()
}

type storeFactory func(t *testing.T, opts ...Option) Store

func newMemory(t *testing.T, opts ...Option) Store {
	t.Helper()
	s := NewMemoryStore(context.Background(), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSQLite(t *testing.T, opts ...Option) Store {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	s, err := NewSQLiteStore(context.Background(), db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		_ = db.Close()
	})
	return s
}

var factories = map[string]storeFactory{
	"memory": newMemory,
	"sqlite": newSQLite,
}

var (
	keyA = model.CriterionKey{AwardKey: "leadership", Criterion: "Lead with Purpose"}
	keyB = model.CriterionKey{AwardKey: "global", Criterion: "Empower Changemakers"}
	ref1 = model.ContentRef{Kind: model.KindDocument, ID: "1"}
)

func satisfyWith(ref model.ContentRef) model.MutateFunc {
	return func(cur model.CriterionState) (model.CriterionState, bool, error) {
		if cur.SatisfiedBy != nil && *cur.SatisfiedBy == ref {
			return cur, false, nil
		}
		cur.Satisfied = true
		cur.SatisfiedBy = &ref
		return cur, true, nil
	}
}

func fixedClock() (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	now := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			now = now.Add(d)
			mu.Unlock()
		}
}

func TestStoreLazyDefaults(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			st, found, err := s.Lookup(ctx, keyA)
			require.NoError(t, err)
			require.False(t, found)
			require.False(t, st.Satisfied)

			n, err := s.Count(ctx)
			require.NoError(t, err)
			require.Zero(t, n)

			st, err = s.Get(ctx, keyA)
			require.NoError(t, err)
			require.Equal(t, keyA, st.CriterionKey)
			require.False(t, st.Satisfied)
			require.False(t, st.Override)
			require.Nil(t, st.SatisfiedBy)

			n, err = s.Count(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			_, err = s.Get(ctx, model.CriterionKey{AwardKey: "leadership"})
			require.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestStoreMutateNoopKeepsTimestamp(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now, advance := fixedClock()
			s := factory(t, WithClock(now))

			first, changed, err := s.Mutate(ctx, keyA, satisfyWith(ref1))
			require.NoError(t, err)
			require.True(t, changed)
			require.True(t, first.Satisfied)
			require.Equal(t, ref1, *first.SatisfiedBy)

			advance(time.Minute)
			second, changed, err := s.Mutate(ctx, keyA, satisfyWith(ref1))
			require.NoError(t, err)
			require.False(t, changed)
			require.True(t, second.UpdatedAt.Equal(first.UpdatedAt))
			require.Equal(t, first.Version, second.Version)

			stored, found, err := s.Lookup(ctx, keyA)
			require.NoError(t, err)
			require.True(t, found)
			require.True(t, stored.SameContent(first))
			require.True(t, stored.UpdatedAt.Equal(first.UpdatedAt))
		})
	}
}

func TestStoreMutateErrorLeavesRecord(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			boom := errors.New("boom")

			_, _, err := s.Mutate(ctx, keyB, func(cur model.CriterionState) (model.CriterionState, bool, error) {
				cur.Satisfied = true
				return cur, true, boom
			})
			require.ErrorIs(t, err, boom)

			st, err := s.Get(ctx, keyB)
			require.NoError(t, err)
			require.False(t, st.Satisfied)
		})
	}
}

func TestStoreListOrdersByKey(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)
			for _, k := range []model.CriterionKey{keyA, keyB, {AwardKey: "leadership", Criterion: "Cultivate Global Citizens"}} {
				_, err := s.Get(ctx, k)
				require.NoError(t, err)
			}

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, "global", all[0].AwardKey)

			lead, err := s.List(ctx, "leadership")
			require.NoError(t, err)
			require.Len(t, lead, 2)
			require.Equal(t, "Cultivate Global Citizens", lead[0].Criterion)
		})
	}
}

func TestStoreConcurrentMutateIsSerialized(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory(t)

			const writers = 16
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _, err := s.Mutate(ctx, keyA, func(cur model.CriterionState) (model.CriterionState, bool, error) {
						cur.Override = true
						cur.Satisfied = !cur.Satisfied
						return cur, true, nil
					})
					if err != nil {
						t.Errorf("mutate: %v", err)
					}
				}()
			}
			wg.Wait()

			st, err := s.Get(ctx, keyA)
			require.NoError(t, err)
			require.Equal(t, int64(writers+1), st.Version)
			require.False(t, st.Satisfied, "an even number of toggles must cancel out")
		})
	}
}

func TestStoreClosed(t *testing.T) {
	s := NewMemoryStore(context.Background())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err := s.Get(context.Background(), keyA)
	require.ErrorIs(t, err, ErrClosed)
}

func TestStoreCancelledContext(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s := factory(t)
			_, _, err := s.Mutate(ctx, keyA, satisfyWith(ref1))
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}
