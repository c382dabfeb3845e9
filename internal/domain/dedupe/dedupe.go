// Package dedupe collapses repeated submissions of the same key while an
// earlier one is still pending.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultMaxSize = 50000

// Deduper tracks pending keys.
type Deduper interface {
	// Claim records key and reports true when it was not already pending.
	Claim(ctx context.Context, key string) bool
	// Release forgets key so it can be claimed again.
	Release(ctx context.Context, key string)
	Size() int64
}

type entry struct {
	key     string
	claimed time.Time
}

// Window is an in-memory Deduper. Entries are kept in claim order, newest
// at the front.
type Window struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	order   *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	size    atomic.Int64
}

// NewWindow builds an empty window.
func NewWindow(opts ...Option) *Window {
	w := &Window{
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Claim implements Deduper.
func (w *Window) Claim(_ context.Context, key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.expire(now)
	if _, ok := w.byKey[key]; ok {
		return false
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		w.remove(w.order.Back())
	}
	w.byKey[key] = w.order.PushFront(&entry{key: key, claimed: now})
	w.size.Store(int64(w.order.Len()))
	return true
}

// Release implements Deduper.
func (w *Window) Release(_ context.Context, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if el, ok := w.byKey[key]; ok {
		w.remove(el)
	}
	w.size.Store(int64(w.order.Len()))
}

// Size implements Deduper.
func (w *Window) Size() int64 { return w.size.Load() }

// expire drops entries claimed before now-ttl. Must hold w.mu.
func (w *Window) expire(now time.Time) {
	if w.ttl <= 0 {
		return
	}
	cutoff := now.Add(-w.ttl)
	for el := w.order.Back(); el != nil; el = w.order.Back() {
		if !el.Value.(*entry).claimed.Before(cutoff) {
			return
		}
		w.remove(el)
	}
}

// remove must hold w.mu.
func (w *Window) remove(el *list.Element) {
	if el == nil {
		return
	}
	delete(w.byKey, el.Value.(*entry).key)
	w.order.Remove(el)
}
