package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes markdown code-fence wrappers and any pre/postamble
// around the outermost JSON value. Providers frequently wrap valid JSON in
// extraneous prose.
func StripFences(raw []byte) []byte {
	text := strings.TrimSpace(string(raw))

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Fall back to the outermost braces when the model prefixed prose.
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		start := strings.IndexAny(text, "{[")
		if start >= 0 {
			end := strings.LastIndexAny(text, "}]")
			if end > start {
				text = text[start : end+1]
			}
		}
	}

	return []byte(text)
}

// DecodeStrict strips wrapping artifacts and unmarshals raw into v.
func DecodeStrict(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("empty output")
	}
	cleaned := StripFences(raw)
	if err := json.Unmarshal(cleaned, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// validateShape runs per-task required-field checks after a structural parse.
func validateShape(task string, v any) error {
	switch payload := v.(type) {
	case *RiskAssessment:
		if strings.TrimSpace(payload.Level) == "" || strings.TrimSpace(payload.Summary) == "" {
			return fmt.Errorf("missing field: level or summary")
		}
	case *KeyFigures:
		if payload.Figures == nil {
			return fmt.Errorf("missing field: figures")
		}
	case *ClauseExplanations:
		if len(payload.Clauses) == 0 {
			return fmt.Errorf("missing field: clauses")
		}
	case *FAQList:
		if payload.FAQs == nil {
			return fmt.Errorf("missing field: faqs")
		}
	case *MissingClauses:
		if payload.Missing == nil {
			return fmt.Errorf("missing field: missing")
		}
	case *DocTypeResult:
		if strings.TrimSpace(payload.DocType) == "" {
			return fmt.Errorf("missing field: docType")
		}
	default:
		_ = task
	}
	return nil
}

// ValidateTask performs the two-stage validate-then-fallback strategy for
// one task output. Strict parse failures are recovered locally into a
// Degraded outcome via the keyword classifier; this function never fails
// for malformed input.
func ValidateTask(task string, raw json.RawMessage, shape any) TaskOutcome {
	if err := DecodeStrict(raw, shape); err != nil {
		return fallbackOutcome(task, raw)
	}
	if err := validateShape(task, shape); err != nil {
		return fallbackOutcome(task, raw)
	}
	value, err := json.Marshal(shape)
	if err != nil {
		return fallbackOutcome(task, raw)
	}
	return successOutcome(value)
}

const fallbackReason = "schema validation failed; used heuristic fallback"

func fallbackOutcome(task string, raw json.RawMessage) TaskOutcome {
	value := FallbackValue(task, raw)
	return degradedOutcome(value, fallbackReason)
}
