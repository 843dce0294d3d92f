package analysis

import (
	"context"
	"time"
)

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	UpdateStatus(ctx context.Context, analysisID, status string, result *Result, errorCode, errorMessage *string, startedAt, completedAt *time.Time) error
	List(ctx context.Context, limit, offset int) ([]Analysis, error)
}
