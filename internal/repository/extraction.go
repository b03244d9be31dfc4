package repository

import (
	"context"

	"contractapi/internal/model"
)

// ExtractionRepository persists pipeline history. Persistence only; no
// business logic here.
type ExtractionRepository interface {
	// Create inserts a record. An empty ID or zero CreatedAt is filled by the database.
	Create(ctx context.Context, e *model.Extraction) (*model.Extraction, error)

	// FindByID returns ErrNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*model.Extraction, error)

	// List returns a page ordered newest first, plus the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Extraction], error)

	// Delete returns ErrNotFound when no record matches.
	Delete(ctx context.Context, id string) error
}

// Noop is used when no database is configured: writes are discarded and
// lookups find nothing.
type Noop struct{}

var _ ExtractionRepository = Noop{}

func (Noop) Create(_ context.Context, e *model.Extraction) (*model.Extraction, error) {
	return e, nil
}

func (Noop) FindByID(context.Context, string) (*model.Extraction, error) {
	return nil, ErrNotFound
}

func (Noop) List(context.Context, PageQuery) (*PageResult[model.Extraction], error) {
	return &PageResult[model.Extraction]{Items: []model.Extraction{}}, nil
}

func (Noop) Delete(context.Context, string) error {
	return ErrNotFound
}
