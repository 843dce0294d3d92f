package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	analysis := Analysis{
		ID:           "analysis-1",
		UserRole:     "tenant",
		Language:     "en",
		DocumentText: "This lease covers the premises.",
		Status:       StatusQueued,
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs(
			analysis.ID,
			analysis.UserRole,
			analysis.Language,
			analysis.DocumentText,
			analysis.Status,
			nil, // result
			nil, // error_code
			nil, // error_message
			analysis.CreatedAt,
			analysis.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDParsesResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	result := Result{
		DocType:     DocTypeResult{DocType: "Lease Agreement", Confidence: 0.6},
		Risk:        successOutcome(json.RawMessage(`{"level":"low","score":20,"summary":"ok","factors":[]}`)),
		ClauseCount: 2,
	}
	resultJSON, _ := json.Marshal(result)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_role", "language", "document_text", "status", "result",
		"error_code", "error_message", "created_at", "started_at", "completed_at", "updated_at",
	}).AddRow("analysis-1", "tenant", "en", "doc text", StatusCompleted, string(resultJSON), nil, nil, now, now, now, now)

	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("analysis-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "analysis-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Result == nil {
		t.Fatal("expected parsed result")
	}
	if got.Result.DocType.DocType != "Lease Agreement" {
		t.Fatalf("unexpected doc type: %q", got.Result.DocType.DocType)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatal("expected nullable timestamps populated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE analyses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "missing", StatusFailed, nil, nil, nil, nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_role", "language", "document_text", "status", "result",
		"error_code", "error_message", "created_at", "started_at", "completed_at", "updated_at",
	}).
		AddRow("a-2", "tenant", "en", "doc", StatusQueued, nil, nil, nil, now, nil, nil, now).
		AddRow("a-1", "landlord", "en", "doc", StatusCompleted, nil, nil, nil, now.Add(-time.Hour), nil, nil, now)

	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(got))
	}
	if got[0].ID != "a-2" {
		t.Fatalf("expected query ordering preserved, got %s first", got[0].ID)
	}
}
