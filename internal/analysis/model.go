package analysis

import (
	"encoding/json"
	"time"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Request is one immutable analysis request.
type Request struct {
	DocumentText string `json:"documentText"`
	UserRole     string `json:"userRole"`
	Language     string `json:"language"`
}

// OutcomeStatus is the settled state of one analysis task.
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFailed   OutcomeStatus = "failed"
)

// TaskOutcome is the single settled result of one task: a validated value,
// a heuristic fallback value with a reason, or a classified failure.
type TaskOutcome struct {
	Status  OutcomeStatus   `json:"status"`
	Value   json.RawMessage `json:"value,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Kind    ErrorKind       `json:"errorKind,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Succeeded reports whether the outcome carries a usable value.
func (o TaskOutcome) Succeeded() bool {
	return o.Status == OutcomeSuccess || o.Status == OutcomeDegraded
}

func successOutcome(value json.RawMessage) TaskOutcome {
	return TaskOutcome{Status: OutcomeSuccess, Value: value}
}

func degradedOutcome(value json.RawMessage, reason string) TaskOutcome {
	return TaskOutcome{Status: OutcomeDegraded, Value: value, Reason: reason}
}

func failedOutcome(kind ErrorKind, message string) TaskOutcome {
	return TaskOutcome{Status: OutcomeFailed, Kind: kind, Message: message}
}

// RiskAssessment is the risk task payload.
type RiskAssessment struct {
	Level   string   `json:"level"`
	Score   int      `json:"score"`
	Summary string   `json:"summary"`
	Factors []string `json:"factors"`
}

// KeyFigures is the key-figures task payload.
type KeyFigures struct {
	Figures []KeyFigure `json:"figures"`
}

type KeyFigure struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Context string `json:"context"`
}

// ClauseExplanations is the clause-explanation task payload. Clause order
// matches document order.
type ClauseExplanations struct {
	Clauses []ClauseExplanation `json:"clauses"`
}

type ClauseExplanation struct {
	Index    int    `json:"index"`
	Original string `json:"original"`
	Plain    string `json:"plain"`
	RiskNote string `json:"riskNote"`
}

// FAQList is the FAQ task payload.
type FAQList struct {
	FAQs []FAQ `json:"faqs"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MissingClauses is the missing-clause task payload.
type MissingClauses struct {
	Missing []MissingClause `json:"missing"`
}

type MissingClause struct {
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// DocTypeResult is the document classification payload.
type DocTypeResult struct {
	DocType    string  `json:"docType"`
	Confidence float64 `json:"confidence"`
}

// Result aggregates the settled outcomes of all analysis tasks. It is built
// once per request and never mutated afterward.
type Result struct {
	DocType        DocTypeResult `json:"docType"`
	Risk           TaskOutcome   `json:"risk"`
	KeyFigures     TaskOutcome   `json:"keyFigures"`
	Clauses        TaskOutcome   `json:"clauses"`
	FAQ            TaskOutcome   `json:"faq"`
	MissingClauses TaskOutcome   `json:"missingClauses"`
	ClauseCount    int           `json:"clauseCount"`
}

// Analysis represents a document analysis job.
type Analysis struct {
	ID           string     `json:"id"`
	UserRole     string     `json:"userRole"`
	Language     string     `json:"language"`
	DocumentText string     `json:"-"`
	Status       string     `json:"status"`
	Result       *Result    `json:"result,omitempty"`
	ErrorCode    string     `json:"errorCode,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
