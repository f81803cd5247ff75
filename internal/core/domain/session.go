package domain

import "time"

const (
	MessageOriginHuman = "human"
	MessageOriginAI    = "ai"
)

type ChatSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionMessage is one entry in a session's append-only history. Content
// holds the user text for human messages and the serialized ChatResult for
// ai messages.
type SessionMessage struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Origin    string       `json:"origin"`
	Content   string       `json:"content"`
	Source    ResultSource `json:"source,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
