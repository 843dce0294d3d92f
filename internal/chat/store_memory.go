package chat

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore keeps sessions in an LRU cache so long-running processes do
// not accumulate unbounded session state. Intended for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, Session]
}

func NewMemoryStore() *MemoryStore {
	cache, err := lru.New[string, Session](MaxSessions)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &MemoryStore{sessions: cache}
}

func (s *MemoryStore) Create(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Add(session.ID, cloneSession(session))
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *MemoryStore) AppendMessages(ctx context.Context, sessionID string, messages ...Message) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	session.Messages = capMessages(append(session.Messages, messages...), MaxSessionMessages)
	session.UpdatedAt = time.Now().UTC()
	s.sessions.Add(sessionID, session)
	return cloneSession(session), nil
}

func cloneSession(session Session) Session {
	clone := session
	clone.Messages = append([]Message(nil), session.Messages...)
	return clone
}
