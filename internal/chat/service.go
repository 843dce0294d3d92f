package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"legalens-backend/internal/analysis"
	"legalens-backend/internal/llm"
	"legalens-backend/internal/shared/metrics"
	"legalens-backend/internal/shared/telemetry"
)

var (
	ErrAnalysisNotReady = errors.New("analysis is not completed")
	ErrEmptyQuestion    = errors.New("question is required")
)

// FallbackReply is returned verbatim when generation fails after retries.
// The user never sees raw provider errors.
const FallbackReply = "I wasn't able to answer that just now. Please try again in a moment, or ask one of the suggested questions below."

// FallbackSuggestions accompany a fallback reply so the conversation has a
// concrete way forward.
var FallbackSuggestions = []string{
	"What are the main risks in this document?",
	"Which clauses should I review most carefully?",
	"Are any standard clauses missing?",
}

// Turn is the result of one chat exchange.
type Turn struct {
	Session     Session  `json:"session"`
	Reply       Message  `json:"reply"`
	Degraded    bool     `json:"degraded"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Service contains business logic for follow-up chat over completed analyses.
type Service struct {
	Store    Store
	Analyses *analysis.Service
	Client   llm.Client
	Runner   *analysis.Runner
}

// CreateSession starts a chat session bound to a completed analysis. The
// document context snapshot is taken once here and reused for every turn.
func (s *Service) CreateSession(ctx context.Context, analysisID string) (Session, error) {
	record, err := s.Analyses.Get(ctx, analysisID)
	if err != nil {
		return Session{}, err
	}
	if record.Status != analysis.StatusCompleted || record.Result == nil {
		return Session{}, ErrAnalysisNotReady
	}

	session := Session{
		ID:         uuid.NewString(),
		AnalysisID: record.ID,
		Context: BuildContext(*record.Result, ContextMeta{
			UserRole:     record.UserRole,
			DocumentText: record.DocumentText,
		}),
		Messages:  []Message{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Store.Create(ctx, session); err != nil {
		return Session{}, err
	}

	telemetry.Info("chat.session_created", map[string]any{
		"session_id":  session.ID,
		"analysis_id": session.AnalysisID,
	})
	return session, nil
}

// Get returns a session with its message history.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrSessionNotFound
	}
	return s.Store.Get(ctx, sessionID)
}

// Send appends the user question, asks the provider with the session's
// context snapshot plus a trailing history window, and appends the reply.
// Generation failures degrade to a static fallback instead of erroring.
func (s *Service) Send(ctx context.Context, sessionID, content string) (Turn, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Turn{}, ErrEmptyQuestion
	}

	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return Turn{}, err
	}

	userMessage := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	// The history window covers prior turns only; the new question travels
	// in the prompt itself.
	history := WindowHistory(session.Messages, HistoryWindow)
	bundle := RenderPrompt(session.Context, history)
	input := llm.BuildChatInput(bundle, content)

	reply, degraded := s.generateReply(ctx, sessionID, input)

	assistantMessage := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	session, err = s.Store.AppendMessages(ctx, sessionID, userMessage, assistantMessage)
	if err != nil {
		return Turn{}, err
	}

	metrics.IncChatTurn()
	turn := Turn{Session: session, Reply: assistantMessage, Degraded: degraded}
	if degraded {
		metrics.IncChatTurnDegraded()
		turn.Suggestions = append([]string(nil), FallbackSuggestions...)
	}
	return turn, nil
}

func (s *Service) generateReply(ctx context.Context, sessionID string, input llm.GenerateInput) (string, bool) {
	raw, kind, err := s.Runner.Run(ctx, llm.TaskChat, func(ctx context.Context) (json.RawMessage, error) {
		return s.Client.Generate(ctx, input)
	})
	if err != nil {
		telemetry.Warn("chat.turn_degraded", map[string]any{
			"session_id": sessionID,
			"error_kind": string(kind),
			"error":      fmt.Sprintf("%v", err),
		})
		return FallbackReply, true
	}

	reply := decodeReply(raw)
	if reply == "" {
		telemetry.Warn("chat.turn_degraded", map[string]any{
			"session_id": sessionID,
			"error_kind": string(analysis.KindMalformedOutput),
			"error":      "empty reply",
		})
		return FallbackReply, true
	}
	return reply, false
}

// decodeReply accepts either a plain-text reply or a JSON string the
// provider wrapped the text in.
func decodeReply(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(text), &unquoted); err == nil {
			text = unquoted
		}
	}
	return strings.TrimSpace(text)
}
