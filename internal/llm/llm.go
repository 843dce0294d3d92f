package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Task names used to select prompts and label telemetry.
const (
	TaskRisk           = "risk"
	TaskKeyFigures     = "key_figures"
	TaskClauses        = "clauses"
	TaskFAQ            = "faq"
	TaskMissingClauses = "missing_clauses"
	TaskDocType        = "doc_type"
	TaskChat           = "chat"
)

// Client abstracts generation providers. A single call takes a prompt-shaped
// input and returns the raw model output, which may be JSON or plain text
// and may fail with a provider-defined error signal.
type Client interface {
	Name() string
	Generate(ctx context.Context, in GenerateInput) (json.RawMessage, error)
}

// GenerateInput captures one generation request.
type GenerateInput struct {
	Task     string
	System   string
	Prompt   string
	WantJSON bool
}

// ErrEmptyOutput is returned when a provider answers with no content.
var ErrEmptyOutput = errors.New("provider returned empty output")
