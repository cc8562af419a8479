// Package store persists workflow run records for audit.
package store

import (
	"context"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// RunFilter specifies criteria for listing run records.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store is the persistence boundary for run records. Records are keyed by
// run id; SaveRun is an upsert so a missing-info resume updates the record
// in place. Deletion is an external administrative operation, not part of
// this interface.
type Store interface {
	SaveRun(ctx context.Context, rec *model.RunRecord) error
	GetRun(ctx context.Context, runID string) (*model.RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
