package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/laurel/internal/domain/model"
)

// MemorySource is an in-process Source and Writer.
type MemorySource struct {
	mu    sync.RWMutex
	items map[model.ContentRef]model.ContentItem
}

// NewMemorySource returns a source holding items.
func NewMemorySource(items ...model.ContentItem) *MemorySource {
	s := &MemorySource{items: make(map[model.ContentRef]model.ContentItem, len(items))}
	for _, it := range items {
		if it.Status == "" {
			it.Status = model.StatusActive
		}
		s.items[it.Ref()] = it
	}
	return s
}

// ListActive implements Source.
func (s *MemorySource) ListActive(ctx context.Context, kinds ...model.ContentKind) ([]model.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter := kindFilter(kinds)
	s.mu.RLock()
	out := make([]model.ContentItem, 0, len(s.items))
	for _, it := range s.items {
		if it.Active() && (filter == nil || filter[it.Kind]) {
			out = append(out, it)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Ref().Less(out[j].Ref()) })
	return out, nil
}

// Get implements Source.
func (s *MemorySource) Get(ctx context.Context, kind model.ContentKind, id string) (model.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return model.ContentItem{}, err
	}
	s.mu.RLock()
	it, ok := s.items[model.ContentRef{Kind: kind, ID: id}]
	s.mu.RUnlock()
	if !ok {
		return model.ContentItem{}, fmt.Errorf("%w: %s:%s", ErrNotFound, kind, id)
	}
	return it, nil
}

// Put implements Writer.
func (s *MemorySource) Put(ctx context.Context, d Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	item := d.Item()
	s.mu.Lock()
	s.items[item.Ref()] = item
	s.mu.Unlock()
	return nil
}

// SetStatus implements Writer.
func (s *MemorySource) SetStatus(ctx context.Context, ref model.ContentRef, status model.ContentStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	it.Status = status
	s.items[ref] = it
	return nil
}
