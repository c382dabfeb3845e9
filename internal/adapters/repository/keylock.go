package repository

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/laurel/internal/domain/model"
)

// keyLocks stripes per-key mutual exclusion over a fixed set of mutexes.
// Holders must not acquire a second key while holding one.
type keyLocks struct {
	shards []sync.Mutex
}

func newKeyLocks(n int) *keyLocks {
	if n <= 0 {
		n = defaultShardCount
	}
	return &keyLocks{shards: make([]sync.Mutex, n)}
}

func (l *keyLocks) lock(key model.CriterionKey) (unlock func()) {
	h := xxhash.New()
	_, _ = h.WriteString(key.AwardKey)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(key.Criterion)
	m := &l.shards[h.Sum64()%uint64(len(l.shards))]
	m.Lock()
	return m.Unlock
}

func validKey(key model.CriterionKey) bool {
	return key.AwardKey != "" && key.Criterion != ""
}
