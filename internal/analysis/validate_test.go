package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"legalens-backend/internal/llm"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n[1,2]\n```", `[1,2]`},
		{"leading prose", "Here is the result: {\"a\":1}", `{"a":1}`},
		{"prose both sides", "Sure! {\"a\":1} Hope that helps.", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(StripFences([]byte(tc.in)))
			if got != tc.want {
				t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidateTaskAcceptsFencedJSON(t *testing.T) {
	raw := json.RawMessage("```json\n{\"level\":\"high\",\"score\":80,\"summary\":\"Several onerous terms.\",\"factors\":[\"penalty\"]}\n```")
	outcome := ValidateTask(llm.TaskRisk, raw, &RiskAssessment{})
	if outcome.Status != OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", outcome.Status, outcome.Reason)
	}
	var risk RiskAssessment
	if err := json.Unmarshal(outcome.Value, &risk); err != nil {
		t.Fatalf("unmarshal outcome value: %v", err)
	}
	if risk.Level != "high" || risk.Score != 80 {
		t.Fatalf("unexpected decoded risk: %+v", risk)
	}
}

func TestValidateTaskDegradesOnInvalidJSON(t *testing.T) {
	raw := json.RawMessage("this lease contains a penalty and liquidated damages clause")
	outcome := ValidateTask(llm.TaskRisk, raw, &RiskAssessment{})
	if outcome.Status != OutcomeDegraded {
		t.Fatalf("expected degraded, got %s", outcome.Status)
	}
	if outcome.Reason == "" {
		t.Fatal("degraded outcome must carry a reason")
	}
	var risk RiskAssessment
	if err := json.Unmarshal(outcome.Value, &risk); err != nil {
		t.Fatalf("fallback value must be valid json: %v", err)
	}
	if risk.Level != "high" {
		t.Fatalf("expected keyword fallback to flag high risk, got %q", risk.Level)
	}
}

func TestValidateTaskDegradesOnMissingRequiredFields(t *testing.T) {
	raw := json.RawMessage(`{"score":40}`)
	outcome := ValidateTask(llm.TaskRisk, raw, &RiskAssessment{})
	if outcome.Status != OutcomeDegraded {
		t.Fatalf("expected degraded for missing level/summary, got %s", outcome.Status)
	}
}

func TestValidateTaskDegradesOnEmptyOutput(t *testing.T) {
	outcome := ValidateTask(llm.TaskFAQ, json.RawMessage("   "), &FAQList{})
	if outcome.Status != OutcomeDegraded {
		t.Fatalf("expected degraded for empty output, got %s", outcome.Status)
	}
	var faqs FAQList
	if err := json.Unmarshal(outcome.Value, &faqs); err != nil {
		t.Fatalf("fallback value must be valid json: %v", err)
	}
	if faqs.FAQs == nil || len(faqs.FAQs) != 0 {
		t.Fatalf("expected empty faq list fallback, got %+v", faqs)
	}
}

func TestValidateTaskClausesRequireAtLeastOneEntry(t *testing.T) {
	raw := json.RawMessage(`{"clauses":[]}`)
	outcome := ValidateTask(llm.TaskClauses, raw, &ClauseExplanations{})
	if outcome.Status != OutcomeDegraded {
		t.Fatalf("expected degraded for empty clauses, got %s", outcome.Status)
	}
}

func TestDecodeStrictErrors(t *testing.T) {
	var v map[string]any
	if err := DecodeStrict(json.RawMessage(""), &v); err == nil {
		t.Fatal("expected error for empty input")
	}
	err := DecodeStrict(json.RawMessage("{broken"), &v)
	if err == nil {
		t.Fatal("expected error for broken json")
	}
	if !strings.Contains(err.Error(), "invalid json") {
		t.Fatalf("expected invalid json error, got %v", err)
	}
}
