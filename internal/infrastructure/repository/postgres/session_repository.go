package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) EnsureSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_sessions (id, created_at, updated_at)
VALUES ($1, $2, $2)
ON CONFLICT (id) DO NOTHING
`, sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("ensure session insert: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, created_at, updated_at
FROM chat_sessions
WHERE id = $1
`, sessionID)

	var session domain.ChatSession
	if err := row.Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, fmt.Errorf("ensure session select: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) AppendMessage(ctx context.Context, message domain.SessionMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_messages (id, session_id, origin, content, source, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, message.ID, message.SessionID, message.Origin, message.Content, nullableString(string(message.Source)), message.CreatedAt)
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE chat_sessions SET updated_at = $2 WHERE id = $1
`, message.SessionID, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("touch chat session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ListMessages(ctx context.Context, sessionID string) ([]domain.SessionMessage, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)
`, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check chat session: %w", err)
	}
	if !exists {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "list chat messages", fmt.Errorf("session %s", sessionID))
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, origin, content, source, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC, id ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.SessionMessage
	for rows.Next() {
		var message domain.SessionMessage
		var source sql.NullString
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Origin, &message.Content, &source, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if source.Valid {
			message.Source = domain.ResultSource(source.String)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return messages, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
