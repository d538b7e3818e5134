package postgres

import (
	"context"
	"database/sql"
	"errors"

	"arxivimg/internal/model"
	"arxivimg/internal/repository"
)

// IsNoRowsError reports whether err means the queried row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// FetchPostgres is a PostgreSQL implementation of repository.FetchRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FetchPostgres struct {
	db *sql.DB
}

// NewFetchPostgres creates a new FetchPostgres repository.
func NewFetchPostgres(db *sql.DB) *FetchPostgres {
	return &FetchPostgres{db: db}
}

var _ repository.FetchRepository = (*FetchPostgres)(nil)

// Create inserts a new fetch row and returns the stored record.
func (r *FetchPostgres) Create(ctx context.Context, f *model.Fetch) (*model.Fetch, error) {
	const q = `
		INSERT INTO fetches (id, paper_url, image_index, image_url, size, content_type, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, paper_url, image_index, image_url, size, content_type, source, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.PaperURL,
		f.ImageIndex,
		f.ImageURL,
		f.Size,
		f.ContentType,
		f.Source,
		f.CreatedAt,
	)
	var out model.Fetch
	if err := row.Scan(
		&out.ID,
		&out.PaperURL,
		&out.ImageIndex,
		&out.ImageURL,
		&out.Size,
		&out.ContentType,
		&out.Source,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single record by its ID.
func (r *FetchPostgres) FindByID(ctx context.Context, id string) (*model.Fetch, error) {
	const q = `
		SELECT id, paper_url, image_index, image_url, size, content_type, source, created_at
		FROM fetches
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var f model.Fetch
	if err := row.Scan(
		&f.ID,
		&f.PaperURL,
		&f.ImageIndex,
		&f.ImageURL,
		&f.Size,
		&f.ContentType,
		&f.Source,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns records using LIMIT/OFFSET pagination and a total count.
func (r *FetchPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Fetch], error) {
	// Count total rows
	const qCount = `SELECT COUNT(*) FROM fetches`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT id, paper_url, image_index, image_url, size, content_type, source, created_at
		FROM fetches
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Fetch, 0)
	for rows.Next() {
		var f model.Fetch
		if err := rows.Scan(
			&f.ID,
			&f.PaperURL,
			&f.ImageIndex,
			&f.ImageURL,
			&f.Size,
			&f.ContentType,
			&f.Source,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Fetch]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *FetchPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM fetches WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
