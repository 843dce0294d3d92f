package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"legalens-backend/internal/llm"
	"legalens-backend/internal/segment"
)

// CriticalTaskError signals that the clause-explanation task failed; without
// it the rest of the result is incoherent to present.
type CriticalTaskError struct {
	Kind    ErrorKind
	Message string
}

func (e *CriticalTaskError) Error() string {
	return fmt.Sprintf("critical task failed (%s): %s", e.Kind, e.Message)
}

// UserMessage returns the friendly message for the failure.
func (e *CriticalTaskError) UserMessage() string {
	return e.Kind.UserMessage()
}

// Orchestrator drives the full analysis pipeline for one request.
type Orchestrator struct {
	client llm.Client
	runner *Runner
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(client llm.Client, runner *Runner) *Orchestrator {
	return &Orchestrator{client: client, runner: runner}
}

// Analyze validates and segments the request, dispatches all analysis tasks
// concurrently, waits for every task to settle and aggregates the outcomes.
// It fails only when segmentation yields nothing to analyze or when the
// clause-explanation task fails.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.DocumentText) == "" || strings.TrimSpace(req.UserRole) == "" {
		return Result{}, ErrEmptyRequest
	}

	clauses := segment.Split(req.DocumentText)
	if len(clauses) == 0 {
		return Result{}, ErrNoContent
	}
	clauseText := segment.JoinText(clauses)

	var (
		risk, figures, clauseOut, faq, missing TaskOutcome
		docType                                DocTypeResult
	)

	// Tasks own their inputs and write disjoint slots; the group never
	// returns early because every task settles into an outcome value.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		risk = o.runTask(gctx, req, llm.TaskRisk, req.DocumentText, &RiskAssessment{})
		return nil
	})
	g.Go(func() error {
		figures = o.runTask(gctx, req, llm.TaskKeyFigures, req.DocumentText, &KeyFigures{})
		return nil
	})
	g.Go(func() error {
		clauseOut = o.runTask(gctx, req, llm.TaskClauses, clauseText, &ClauseExplanations{})
		return nil
	})
	g.Go(func() error {
		faq = o.runTask(gctx, req, llm.TaskFAQ, req.DocumentText, &FAQList{})
		return nil
	})
	g.Go(func() error {
		missing = o.runTask(gctx, req, llm.TaskMissingClauses, req.DocumentText, &MissingClauses{})
		return nil
	})
	g.Go(func() error {
		docType = o.classifyDocType(gctx, req)
		return nil
	})
	_ = g.Wait()

	if clauseOut.Status == OutcomeFailed {
		return Result{}, &CriticalTaskError{Kind: clauseOut.Kind, Message: clauseOut.Message}
	}

	return Result{
		DocType:        docType,
		Risk:           risk,
		KeyFigures:     figures,
		Clauses:        clauseOut,
		FAQ:            faq,
		MissingClauses: missing,
		ClauseCount:    len(clauses),
	}, nil
}

// runTask executes one generation task through the retry runner and the
// validate-then-fallback stage. A panic inside a task never escapes to
// sibling tasks.
func (o *Orchestrator) runTask(ctx context.Context, req Request, task, documentText string, shape any) (outcome TaskOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = failedOutcome(KindUnknown, fmt.Sprintf("task panic: %v", r))
		}
	}()

	in := llm.BuildTaskInput(task, req.UserRole, req.Language, documentText)
	raw, kind, err := o.runner.Run(ctx, task, func(ctx context.Context) (json.RawMessage, error) {
		return o.client.Generate(ctx, in)
	})
	if err != nil {
		return failedOutcome(kind, sanitizeError(err))
	}
	return ValidateTask(task, raw, shape)
}

// classifyDocType asks the model for a document type and falls back to the
// deterministic keyword table on any failure.
func (o *Orchestrator) classifyDocType(ctx context.Context, req Request) (result DocTypeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ClassifyDocType(req.DocumentText)
		}
	}()

	in := llm.BuildTaskInput(llm.TaskDocType, req.UserRole, req.Language, req.DocumentText)
	raw, _, err := o.runner.Run(ctx, llm.TaskDocType, func(ctx context.Context) (json.RawMessage, error) {
		return o.client.Generate(ctx, in)
	})
	if err != nil {
		return ClassifyDocType(req.DocumentText)
	}

	var parsed DocTypeResult
	if decodeErr := DecodeStrict(raw, &parsed); decodeErr != nil || strings.TrimSpace(parsed.DocType) == "" {
		return ClassifyDocType(string(raw))
	}
	return parsed
}
