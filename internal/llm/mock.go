package llm

import (
	"context"
	"encoding/json"
)

// MockClient returns canned output per task. It backs dev mode when no
// provider credentials are configured, and doubles as a test stub.
type MockClient struct{}

// NewMockClient constructs a MockClient.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Name() string {
	return "mock"
}

func (m *MockClient) Generate(ctx context.Context, in GenerateInput) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch in.Task {
	case TaskRisk:
		return json.RawMessage(`{"level":"medium","score":55,"summary":"Mock risk assessment.","factors":["mock factor"]}`), nil
	case TaskKeyFigures:
		return json.RawMessage(`{"figures":[{"label":"Term","value":"12 months","context":"mock"}]}`), nil
	case TaskClauses:
		return json.RawMessage(`{"clauses":[{"index":0,"original":"Mock clause.","plain":"This is a mock explanation.","riskNote":""}]}`), nil
	case TaskFAQ:
		return json.RawMessage(`{"faqs":[{"question":"Is this binding?","answer":"Mock answer."}]}`), nil
	case TaskMissingClauses:
		return json.RawMessage(`{"missing":[{"name":"Severability","reason":"mock","severity":"low"}]}`), nil
	case TaskDocType:
		return json.RawMessage(`{"docType":"General Legal Document","confidence":0.5}`), nil
	default:
		return json.RawMessage(`This is a mock reply about the analyzed document.`), nil
	}
}
