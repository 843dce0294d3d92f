package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

// Create inserts a session with its context snapshot.
func (s *PGStore) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO chat_sessions (id, analysis_id, context, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	contextPayload, err := json.Marshal(session.Context)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}
	_, err = s.DB.ExecContext(ctx, query,
		session.ID,
		session.AnalysisID,
		string(contextPayload),
		session.CreatedAt,
		session.CreatedAt,
	)
	return err
}

// Get returns a session with its messages in chronological order.
func (s *PGStore) Get(ctx context.Context, sessionID string) (Session, error) {
	const sessionQuery = `
SELECT id, analysis_id, context, created_at, updated_at
FROM chat_sessions
WHERE id = $1
LIMIT 1`
	row := s.DB.QueryRowContext(ctx, sessionQuery, sessionID)

	var session Session
	var contextPayload string
	err := row.Scan(&session.ID, &session.AnalysisID, &contextPayload, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(contextPayload), &session.Context); err != nil {
		return Session{}, fmt.Errorf("unmarshal session context: %w", err)
	}

	const messagesQuery = `
SELECT id, role, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := s.DB.QueryContext(ctx, messagesQuery, sessionID)
	if err != nil {
		return Session{}, err
	}
	defer rows.Close()

	session.Messages = []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return Session{}, err
		}
		session.Messages = append(session.Messages, m)
	}
	return session, rows.Err()
}

// AppendMessages inserts messages, bumps the session timestamp, and evicts
// the oldest messages beyond the retained cap.
func (s *PGStore) AppendMessages(ctx context.Context, sessionID string, messages ...Message) (Session, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback()

	const insertQuery = `
INSERT INTO chat_messages (id, session_id, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)`
	for _, m := range messages {
		if _, err := tx.ExecContext(ctx, insertQuery, m.ID, sessionID, m.Role, m.Content, m.CreatedAt); err != nil {
			return Session{}, err
		}
	}

	const touchQuery = `
UPDATE chat_sessions
SET updated_at = now()
WHERE id = $1`
	res, err := tx.ExecContext(ctx, touchQuery, sessionID)
	if err != nil {
		return Session{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Session{}, err
	}
	if affected == 0 {
		return Session{}, ErrSessionNotFound
	}

	const evictQuery = `
DELETE FROM chat_messages
WHERE session_id = $1
  AND id NOT IN (
    SELECT id FROM chat_messages
    WHERE session_id = $1
    ORDER BY created_at DESC, id DESC
    LIMIT $2
  )`
	if _, err := tx.ExecContext(ctx, evictQuery, sessionID, MaxSessionMessages); err != nil {
		return Session{}, err
	}

	if err := tx.Commit(); err != nil {
		return Session{}, err
	}
	return s.Get(ctx, sessionID)
}
