package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"legalens-backend/internal/llm"
)

// DocTypeRule maps a keyword set to a document type with a fixed confidence.
type DocTypeRule struct {
	Keywords   []string
	DocType    string
	Confidence float64
}

// UnknownDocType is the floor classification when no rule matches.
var UnknownDocType = DocTypeResult{DocType: "General Legal Document", Confidence: 0.2}

// DocTypeRules is evaluated top to bottom; the first rule whose keywords all
// appear in the lowercased text wins. The ordering is hand-tuned: more
// specific keyword sets come first.
var DocTypeRules = []DocTypeRule{
	{Keywords: []string{"lease", "commercial"}, DocType: "Commercial Lease Agreement", Confidence: 0.7},
	{Keywords: []string{"lease", "residential"}, DocType: "Residential Lease Agreement", Confidence: 0.7},
	{Keywords: []string{"lease"}, DocType: "Lease Agreement", Confidence: 0.6},
	{Keywords: []string{"rent", "tenant"}, DocType: "Rental Agreement", Confidence: 0.6},
	{Keywords: []string{"employment", "employee"}, DocType: "Employment Contract", Confidence: 0.7},
	{Keywords: []string{"non-disclosure"}, DocType: "Non-Disclosure Agreement", Confidence: 0.7},
	{Keywords: []string{"confidential", "disclosure"}, DocType: "Non-Disclosure Agreement", Confidence: 0.6},
	{Keywords: []string{"loan", "borrower"}, DocType: "Loan Agreement", Confidence: 0.65},
	{Keywords: []string{"purchase", "buyer"}, DocType: "Purchase Agreement", Confidence: 0.6},
	{Keywords: []string{"services", "client"}, DocType: "Service Agreement", Confidence: 0.55},
	{Keywords: []string{"license"}, DocType: "License Agreement", Confidence: 0.5},
}

// ClassifyDocType runs the keyword rule table over free text. Deterministic,
// first match wins, unmatched text yields UnknownDocType.
func ClassifyDocType(text string) DocTypeResult {
	lowered := strings.ToLower(text)
	for _, rule := range DocTypeRules {
		matched := true
		for _, keyword := range rule.Keywords {
			if !strings.Contains(lowered, keyword) {
				matched = false
				break
			}
		}
		if matched {
			return DocTypeResult{DocType: rule.DocType, Confidence: rule.Confidence}
		}
	}
	return UnknownDocType
}

var (
	highRiskTokens = []string{"penalty", "liquidated damages", "indemnif", "terminate without notice", "waive", "forfeit"}
	figurePattern  = regexp.MustCompile(`(?i)([$€£]\s?[\d,]+(?:\.\d+)?|\d+(?:\.\d+)?\s?%|\d+\s(?:days?|months?|years?))`)
)

// FallbackValue derives a best-effort structured value for a task whose raw
// output failed strict validation. Purely deterministic; never errors.
func FallbackValue(task string, raw json.RawMessage) json.RawMessage {
	text := strings.TrimSpace(string(raw))
	lowered := strings.ToLower(text)

	var value any
	switch task {
	case llm.TaskDocType:
		value = ClassifyDocType(text)
	case llm.TaskRisk:
		hits := 0
		for _, token := range highRiskTokens {
			if strings.Contains(lowered, token) {
				hits++
			}
		}
		risk := RiskAssessment{Level: "medium", Score: 50, Summary: "Automated keyword-based estimate; the detailed assessment could not be read.", Factors: []string{}}
		if hits >= 2 {
			risk.Level = "high"
			risk.Score = 75
		} else if hits == 0 && len(lowered) > 0 && !strings.Contains(lowered, "risk") {
			risk.Level = "low"
			risk.Score = 30
		}
		value = risk
	case llm.TaskKeyFigures:
		matches := figurePattern.FindAllString(text, 10)
		figures := make([]KeyFigure, 0, len(matches))
		for _, m := range matches {
			figures = append(figures, KeyFigure{Label: "Figure", Value: strings.TrimSpace(m), Context: "extracted from unstructured output"})
		}
		value = KeyFigures{Figures: figures}
	case llm.TaskClauses:
		explanations := ClauseExplanations{Clauses: []ClauseExplanation{}}
		if text != "" {
			explanations.Clauses = append(explanations.Clauses, ClauseExplanation{
				Index:    0,
				Original: "",
				Plain:    truncate(text, 2000),
			})
		}
		value = explanations
	case llm.TaskFAQ:
		value = FAQList{FAQs: []FAQ{}}
	case llm.TaskMissingClauses:
		value = MissingClauses{Missing: []MissingClause{}}
	default:
		value = map[string]string{"text": truncate(text, 2000)}
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return payload
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so a multibyte rune is never split.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
