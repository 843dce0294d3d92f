package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, user_role, language, document_text, status, result, error_code, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	resultPayload, err := marshalJSONB(analysis.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserRole,
		analysis.Language,
		analysis.DocumentText,
		analysis.Status,
		resultPayload,
		nullString(analysis.ErrorCode),
		nullString(analysis.ErrorMessage),
		analysis.CreatedAt,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_role, language, document_text, status, result, error_code, error_message,
       created_at, started_at, completed_at, updated_at
FROM analyses
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return analysis, err
}

// UpdateStatus updates status, result, error fields and timestamps.
func (r *PGRepo) UpdateStatus(ctx context.Context, analysisID, status string, result *Result, errorCode, errorMessage *string, startedAt, completedAt *time.Time) error {
	const query = `
UPDATE analyses
SET status = $2,
    result = COALESCE($3, result),
    error_code = COALESCE($4, error_code),
    error_message = COALESCE($5, error_message),
    started_at = COALESCE($6, started_at),
    completed_at = COALESCE($7, completed_at),
    updated_at = now()
WHERE id = $1`
	resultPayload, err := marshalJSONB(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, analysisID, status, resultPayload, errorCode, errorMessage, startedAt, completedAt)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns analyses newest-first with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	const query = `
SELECT id, user_role, language, document_text, status, result, error_code, error_message,
       created_at, started_at, completed_at, updated_at
FROM analyses
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var result sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.UserRole,
		&a.Language,
		&a.DocumentText,
		&a.Status,
		&result,
		&errorCode,
		&errorMessage,
		&a.CreatedAt,
		&startedAt,
		&completedAt,
		&a.UpdatedAt,
	); err != nil {
		return Analysis{}, err
	}

	if result.Valid && result.String != "" {
		var parsed Result
		if err := json.Unmarshal([]byte(result.String), &parsed); err == nil {
			a.Result = &parsed
		}
	}
	a.ErrorCode = errorCode.String
	a.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		a.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

func marshalJSONB(result *Result) (any, error) {
	if result == nil {
		return nil, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
