package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"legalens-backend/internal/analysis"
)

const (
	// ExcerptCharBudget caps the document excerpt embedded in every
	// follow-up prompt so repeated turns never grow unboundedly.
	ExcerptCharBudget = 1200

	// TruncationMarker is appended when the excerpt was cut.
	TruncationMarker = " … [truncated]"

	// NotAvailable keeps prompt structure stable when a section has no
	// usable outcome.
	NotAvailable = "not yet available"

	// HistoryWindow is the number of trailing messages included per turn.
	HistoryWindow = 6
)

// ContextMeta carries the identifying metadata for a context snapshot.
type ContextMeta struct {
	UserRole     string
	DocumentText string
}

// BuildContext derives a bounded DocumentContext from a completed analysis
// result. Pure and deterministic; empty outcomes map to explicit sentinel
// text rather than omitted fields.
func BuildContext(result analysis.Result, meta ContextMeta) DocumentContext {
	return DocumentContext{
		DocType:        result.DocType.DocType,
		Confidence:     result.DocType.Confidence,
		UserRole:       meta.UserRole,
		Excerpt:        truncateExcerpt(meta.DocumentText),
		RiskSummary:    riskText(result.Risk),
		KeyFiguresText: figuresText(result.KeyFigures),
		ClausesText:    clausesText(result.Clauses),
		MissingText:    missingText(result.MissingClauses),
	}
}

// WindowHistory returns the most recent n messages in original order.
func WindowHistory(messages []Message, n int) []Message {
	if n <= 0 || len(messages) == 0 {
		return nil
	}
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// RenderPrompt turns a context snapshot plus a trailing history window into
// the prompt-ready bundle for one chat turn.
func RenderPrompt(docContext DocumentContext, history []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DOCUMENT TYPE: %s (confidence %.2f)\n", docContext.DocType, docContext.Confidence)
	fmt.Fprintf(&b, "USER ROLE: %s\n\n", docContext.UserRole)
	fmt.Fprintf(&b, "DOCUMENT EXCERPT:\n%s\n\n", docContext.Excerpt)
	fmt.Fprintf(&b, "RISK ASSESSMENT: %s\n\n", docContext.RiskSummary)
	fmt.Fprintf(&b, "KEY FIGURES: %s\n\n", docContext.KeyFiguresText)
	fmt.Fprintf(&b, "CLAUSE NOTES: %s\n\n", docContext.ClausesText)
	fmt.Fprintf(&b, "MISSING CLAUSES: %s\n", docContext.MissingText)

	if len(history) > 0 {
		b.WriteString("\nRECENT CONVERSATION:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}
	return b.String()
}

func truncateExcerpt(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NotAvailable
	}
	if len(trimmed) <= ExcerptCharBudget {
		return trimmed
	}
	// Back up to a rune boundary so the cut never splits a multibyte rune.
	cut := ExcerptCharBudget
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + TruncationMarker
}

func riskText(outcome analysis.TaskOutcome) string {
	if !outcome.Succeeded() {
		return NotAvailable
	}
	var risk analysis.RiskAssessment
	if err := json.Unmarshal(outcome.Value, &risk); err != nil || risk.Summary == "" {
		return NotAvailable
	}
	return fmt.Sprintf("%s (level %s, score %d)", risk.Summary, risk.Level, risk.Score)
}

func figuresText(outcome analysis.TaskOutcome) string {
	if !outcome.Succeeded() {
		return NotAvailable
	}
	var figures analysis.KeyFigures
	if err := json.Unmarshal(outcome.Value, &figures); err != nil || len(figures.Figures) == 0 {
		return NotAvailable
	}
	parts := make([]string, 0, len(figures.Figures))
	for _, figure := range figures.Figures {
		parts = append(parts, fmt.Sprintf("%s: %s", figure.Label, figure.Value))
	}
	return strings.Join(parts, "; ")
}

func clausesText(outcome analysis.TaskOutcome) string {
	if !outcome.Succeeded() {
		return NotAvailable
	}
	var explanations analysis.ClauseExplanations
	if err := json.Unmarshal(outcome.Value, &explanations); err != nil || len(explanations.Clauses) == 0 {
		return NotAvailable
	}
	parts := make([]string, 0, len(explanations.Clauses))
	for _, clause := range explanations.Clauses {
		parts = append(parts, fmt.Sprintf("[%d] %s", clause.Index, clause.Plain))
	}
	return strings.Join(parts, " ")
}

func missingText(outcome analysis.TaskOutcome) string {
	if !outcome.Succeeded() {
		return NotAvailable
	}
	var missing analysis.MissingClauses
	if err := json.Unmarshal(outcome.Value, &missing); err != nil || len(missing.Missing) == 0 {
		return NotAvailable
	}
	parts := make([]string, 0, len(missing.Missing))
	for _, clause := range missing.Missing {
		parts = append(parts, clause.Name)
	}
	return strings.Join(parts, ", ")
}
