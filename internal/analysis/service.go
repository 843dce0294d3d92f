package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"legalens-backend/internal/shared/metrics"
	"legalens-backend/internal/shared/telemetry"
)

// Service contains business logic for analyses.
type Service struct {
	Repo         Repo
	Orchestrator *Orchestrator
	Languages    []string
}

// Create enqueues a new analysis and kicks off asynchronous completion.
func (s *Service) Create(ctx context.Context, req Request) (Analysis, error) {
	if strings.TrimSpace(req.DocumentText) == "" || strings.TrimSpace(req.UserRole) == "" {
		return Analysis{}, ErrEmptyRequest
	}
	req.Language = s.normalizeLanguage(req.Language)

	analysis := Analysis{
		ID:           uuid.NewString(),
		UserRole:     strings.TrimSpace(req.UserRole),
		Language:     req.Language,
		DocumentText: req.DocumentText,
		Status:       StatusQueued,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}

	go s.completeAsync(backgroundWithRequestID(ctx), analysis.ID)

	return analysis, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	return s.Repo.GetByID(ctx, analysisID)
}

// List returns analyses ordered newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return "en"
	}
	for _, supported := range s.Languages {
		if language == supported {
			return language
		}
	}
	return "en"
}

func (s *Service) completeAsync(ctx context.Context, analysisID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failAnalysis(ctx, analysisID, KindUnknown, fmt.Errorf("panic: %v", r), nil)
		}
	}()
	startedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusProcessing, nil, nil, nil, &startedAt, nil); err != nil {
		s.failAnalysis(ctx, analysisID, KindUnknown, fmt.Errorf("set processing failed: %w", err), &startedAt)
		return
	}

	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		s.failAnalysis(ctx, analysisID, KindUnknown, fmt.Errorf("analysis lookup: %w", err), &startedAt)
		return
	}
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       analysis.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.Orchestrator == nil {
		s.failAnalysis(ctx, analysisID, KindUnknown, errors.New("missing orchestrator"), &startedAt)
		return
	}

	result, err := s.Orchestrator.Analyze(ctx, Request{
		DocumentText: analysis.DocumentText,
		UserRole:     analysis.UserRole,
		Language:     analysis.Language,
	})
	if err != nil {
		kind := KindUnknown
		var critical *CriticalTaskError
		switch {
		case errors.As(err, &critical):
			kind = critical.Kind
		case errors.Is(err, ErrNoContent):
			kind = KindMalformedOutput
		}
		s.failAnalysis(ctx, analysisID, kind, err, &startedAt)
		return
	}

	recordTaskOutcomes(result)

	completedAt := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, analysisID, StatusCompleted, &result, nil, nil, nil, &completedAt); err != nil {
		s.failAnalysis(ctx, analysisID, KindUnknown, fmt.Errorf("set analysis result failed: %w", err), &startedAt)
		return
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       analysisID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"doc_type":          result.DocType.DocType,
		"clause_count":      result.ClauseCount,
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
}

func (s *Service) failAnalysis(ctx context.Context, analysisID string, kind ErrorKind, err error, startedAt *time.Time) {
	code := string(kind)
	msg := kind.UserMessage()
	if errors.Is(err, ErrNoContent) {
		msg = "The document contains no analyzable content."
	}
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.UpdateStatus(context.Background(), analysisID, StatusFailed, nil, &code, &msg, nil, &completedAt); updateErr != nil {
		telemetry.Error("analysis.fail_update", map[string]any{
			"analysis_id": analysisID,
			"error":       sanitizeError(updateErr),
			"orig_error":  sanitizeError(err),
		})
	}
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       analysisID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_kind":        code,
		"error":             sanitizeError(err),
		"duration_ms":       durationMs(startedAt, &completedAt),
	})
}

func recordTaskOutcomes(result Result) {
	metrics.IncTaskOutcome("risk", string(result.Risk.Status))
	metrics.IncTaskOutcome("key_figures", string(result.KeyFigures.Status))
	metrics.IncTaskOutcome("clauses", string(result.Clauses.Status))
	metrics.IncTaskOutcome("faq", string(result.FAQ.Status))
	metrics.IncTaskOutcome("missing_clauses", string(result.MissingClauses.Status))
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}
