// Package repository persists CriterionState records with per-key atomic
// read-modify-write.
package repository

import (
	"context"

	"github.com/okian/laurel/internal/domain/model"
)

// Store provides access to checklist state.
//
// Mutate calls for the same key are linearizable: the store runs fn under a
// per-key lock and persists its result before releasing it.
type Store interface {
	// Get returns the record for key, materializing the default when absent.
	Get(ctx context.Context, key model.CriterionKey) (model.CriterionState, error)
	// Lookup returns the record without materializing it; found is false when absent.
	Lookup(ctx context.Context, key model.CriterionKey) (state model.CriterionState, found bool, err error)
	// Mutate applies fn atomically for key, materializing the default first.
	Mutate(ctx context.Context, key model.CriterionKey, fn model.MutateFunc) (model.CriterionState, bool, error)
	// List returns materialized records of an award, or all records when awardKey is empty.
	List(ctx context.Context, awardKey string) ([]model.CriterionState, error)
	// Count returns the number of materialized records.
	Count(ctx context.Context) (int, error)
	Close() error
}
