// Package content provides read access to the documents and events the
// engine analyzes.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/laurel/internal/domain/model"
)

// ErrNotFound is returned when no item exists for a kind and id.
var ErrNotFound = model.ErrContentNotFound

// Source is the read-only view of the content corpus.
type Source interface {
	// ListActive returns active items of the given kinds, or of every kind
	// when none are given, ordered by kind then id.
	ListActive(ctx context.Context, kinds ...model.ContentKind) ([]model.ContentItem, error)
	// Get returns one item regardless of status, or ErrNotFound.
	Get(ctx context.Context, kind model.ContentKind, id string) (model.ContentItem, error)
}

// Draft is the raw form of a content item as authored upstream.
type Draft struct {
	Kind        model.ContentKind
	ID          string
	Title       string
	Description string
	Tags        []string
	Status      model.ContentStatus
	CreatedAt   time.Time
}

// Item composes the analyzable item from the draft.
func (d Draft) Item() model.ContentItem {
	status := d.Status
	if status == "" {
		status = model.StatusActive
	}
	return model.ContentItem{
		ID:        d.ID,
		Kind:      d.Kind,
		Title:     d.Title,
		Text:      model.ComposeText(d.Title, d.Description, strings.Join(d.Tags, " ")),
		CreatedAt: d.CreatedAt,
		Status:    status,
	}
}

// Validate checks the draft's kind and id.
func (d Draft) Validate() error {
	ref := model.ContentRef{Kind: d.Kind, ID: d.ID}
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("invalid content %s: %w", ref, err)
	}
	return nil
}

// Writer is implemented by sources that can also be populated, for
// seeding and tests.
type Writer interface {
	Put(ctx context.Context, d Draft) error
	SetStatus(ctx context.Context, ref model.ContentRef, status model.ContentStatus) error
}

func kindFilter(kinds []model.ContentKind) map[model.ContentKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	f := make(map[model.ContentKind]bool, len(kinds))
	for _, k := range kinds {
		f[k] = true
	}
	return f
}
