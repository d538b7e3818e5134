// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"arxivimg/internal/model"
)

// FetchRepository defines data access for fetch audit records using SQL queries only.
// No business logic here — strictly persistence operations.
type FetchRepository interface {
	// Create inserts a new fetch record.
	// The caller provides required fields (e.g., ID, CreatedAt) according to the schema defaults.
	// Returns the stored record (may include values set by the DB).
	Create(ctx context.Context, f *model.Fetch) (*model.Fetch, error)

	// FindByID returns a fetch record by its ID.
	FindByID(ctx context.Context, id string) (*model.Fetch, error)

	// List returns a paginated list of fetch records and the total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Fetch], error)

	// Delete removes a fetch record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
