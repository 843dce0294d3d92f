package chat

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	// MaxSessionMessages caps the retained message history per session;
	// the oldest messages are evicted first.
	MaxSessionMessages = 50

	// MaxSessions caps the retained session count in the in-memory store.
	MaxSessions = 256
)

// Store defines persistence operations for chat sessions.
type Store interface {
	Create(ctx context.Context, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	AppendMessages(ctx context.Context, sessionID string, messages ...Message) (Session, error)
}

// capMessages enforces the retained-message limit, evicting oldest first
// while preserving the order of the remainder.
func capMessages(messages []Message, max int) []Message {
	if max <= 0 || len(messages) <= max {
		return messages
	}
	return append([]Message(nil), messages[len(messages)-max:]...)
}
