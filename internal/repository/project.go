package repository

import (
	"context"

	"archecho/internal/model"
)

// Package repository contains data access abstractions for the schemaless
// project document collection. Implementations live in subpackages.

// MaxBatchOps is the store's per-transaction operation ceiling. Batched
// writers must commit before reaching it.
const MaxBatchOps = 500

// RawProject is one project document as stored: identifier plus the
// unvalidated field map. Numeric fields may be numbers or text; mapping to
// model.Project is the caller's job.
type RawProject struct {
	ID   string
	Data map[string]any
}

// ProjectRepository defines persistence operations for project documents and
// their file records. No business logic here.
type ProjectRepository interface {
	// GetByID returns a single project document. Missing rows surface as sql.ErrNoRows.
	GetByID(ctx context.Context, id string) (*RawProject, error)

	// GetAll returns every project document ordered by identifier.
	GetAll(ctx context.Context) ([]RawProject, error)

	// ListIDs returns every known project identifier ordered ascending.
	ListIDs(ctx context.Context) ([]string, error)

	// CreateFiles inserts the given file records in one atomic transaction.
	// len(files) must not exceed MaxBatchOps. Blind inserts: existing rows
	// are never updated.
	CreateFiles(ctx context.Context, files []model.ProjectFile) error

	// UnionDesignConcepts merges concepts into the project's tag set without
	// dropping existing tags. Concurrent merges must not lose tags. Missing
	// projects surface as sql.ErrNoRows.
	UnionDesignConcepts(ctx context.Context, id string, concepts []string) error
}
