package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/pkg/metrics"
)

// MemoryStore keeps checklist state in process memory.
type MemoryStore struct {
	cfg    settings
	locks  *keyLocks
	mu     sync.RWMutex
	byKey  map[model.CriterionKey]model.CriterionState
	closed atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore builds an empty store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	cfg := newSettings(opts)
	s := &MemoryStore{
		cfg:      cfg,
		locks:    newKeyLocks(cfg.shardCount),
		byKey:    make(map[model.CriterionKey]model.CriterionState),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go runMetricsUpdater(ctx, &s.wg, s.stopChan, cfg.metricsUpdateInterval, func() {
		s.mu.RLock()
		n := len(s.byKey)
		s.mu.RUnlock()
		metrics.UpdateStoreRecords(n)
	})
	return s
}

// Close stops background work. Further calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) check(ctx context.Context, key *model.CriterionKey) error {
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

// materialize must be called with the key's stripe lock held.
func (s *MemoryStore) materialize(key model.CriterionKey) model.CriterionState {
	s.mu.RLock()
	cur, ok := s.byKey[key]
	s.mu.RUnlock()
	if ok {
		return cur.Clone()
	}
	cur = model.DefaultState(key)
	cur.UpdatedAt = s.cfg.now()
	cur.Version = 1
	s.mu.Lock()
	s.byKey[key] = cur
	s.mu.Unlock()
	return cur
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key model.CriterionKey) (model.CriterionState, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, err
	}
	defer observe("get", time.Now())

	unlock := s.locks.lock(key)
	defer unlock()
	return s.materialize(key), nil
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(ctx context.Context, key model.CriterionKey) (model.CriterionState, bool, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, false, err
	}
	s.mu.RLock()
	cur, ok := s.byKey[key]
	s.mu.RUnlock()
	if !ok {
		return model.DefaultState(key), false, nil
	}
	return cur.Clone(), true, nil
}

// Mutate implements Store.
func (s *MemoryStore) Mutate(ctx context.Context, key model.CriterionKey, fn model.MutateFunc) (model.CriterionState, bool, error) {
	if err := s.check(ctx, &key); err != nil {
		return model.CriterionState{}, false, err
	}
	defer observe("mutate", time.Now())

	unlock := s.locks.lock(key)
	defer unlock()

	cur := s.materialize(key)
	next, changed, err := fn(cur.Clone())
	if err != nil || !changed {
		return cur, false, err
	}
	next.CriterionKey = key
	next.Version = cur.Version + 1
	next.UpdatedAt = s.cfg.now()
	next = next.Clone()

	s.mu.Lock()
	s.byKey[key] = next
	s.mu.Unlock()
	return next.Clone(), true, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, awardKey string) ([]model.CriterionState, error) {
	if err := s.check(ctx, nil); err != nil {
		return nil, err
	}
	defer observe("list", time.Now())

	s.mu.RLock()
	out := make([]model.CriterionState, 0, len(s.byKey))
	for k, v := range s.byKey {
		if awardKey == "" || k.AwardKey == awardKey {
			out = append(out, v.Clone())
		}
	}
	s.mu.RUnlock()
	sortStates(out)
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := s.check(ctx, nil); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey), nil
}

func sortStates(states []model.CriterionState) {
	sort.Slice(states, func(i, j int) bool {
		if states[i].AwardKey != states[j].AwardKey {
			return states[i].AwardKey < states[j].AwardKey
		}
		return states[i].Criterion < states[j].Criterion
	})
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func runMetricsUpdater(ctx context.Context, wg *sync.WaitGroup, stop <-chan struct{}, every time.Duration, update func()) {
	defer wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			update()
		}
	}
}
