package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"contractapi/internal/model"
	"contractapi/internal/repository"
)

// ExtractionPostgres is a PostgreSQL implementation of repository.ExtractionRepository.
// The structured result is stored as JSONB.
type ExtractionPostgres struct {
	db *sql.DB
}

// NewExtractionPostgres creates a new ExtractionPostgres repository.
func NewExtractionPostgres(db *sql.DB) *ExtractionPostgres {
	return &ExtractionPostgres{db: db}
}

var _ repository.ExtractionRepository = (*ExtractionPostgres)(nil)

const extractionColumns = `id, filename, storage_path, size, success, error_kind, error_message, attempts, duration_ms, result, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(s scanner) (*model.Extraction, error) {
	var (
		e      model.Extraction
		result []byte
	)
	if err := s.Scan(
		&e.ID,
		&e.Filename,
		&e.StoragePath,
		&e.Size,
		&e.Success,
		&e.ErrorKind,
		&e.ErrorMessage,
		&e.Attempts,
		&e.DurationMS,
		&result,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &e.Result); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

// Create inserts a row; the database assigns id and created_at when they are unset.
func (r *ExtractionPostgres) Create(ctx context.Context, e *model.Extraction) (*model.Extraction, error) {
	result, err := json.Marshal(e.Result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	q := `
		INSERT INTO extractions (id, filename, storage_path, size, success, error_kind, error_message, attempts, duration_ms, result, created_at)
		VALUES (COALESCE(NULLIF($1, '')::uuid, uuid_generate_v4()), $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		RETURNING ` + extractionColumns

	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}

	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.Filename,
		e.StoragePath,
		e.Size,
		e.Success,
		e.ErrorKind,
		e.ErrorMessage,
		e.Attempts,
		e.DurationMS,
		result,
		createdAt,
	)
	return scanExtraction(row)
}

// FindByID fetches a single extraction by its ID.
func (r *ExtractionPostgres) FindByID(ctx context.Context, id string) (*model.Extraction, error) {
	q := `SELECT ` + extractionColumns + ` FROM extractions WHERE id = $1`
	e, err := scanExtraction(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return e, err
}

// List returns extractions using LIMIT/OFFSET pagination and a total count.
func (r *ExtractionPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Extraction], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extractions`).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + extractionColumns + ` FROM extractions ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Extraction, 0)
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Extraction]{Items: items, Total: total}, nil
}

// Delete removes an extraction by ID.
func (r *ExtractionPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM extractions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
