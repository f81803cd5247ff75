package ports

import (
	"context"
	"io"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

// ChatService is the inbound contract for one routed chat turn.
type ChatService interface {
	Chat(ctx context.Context, sessionID string, query domain.Query, topK int) (*domain.ChatResult, error)
}

// SessionReader exposes a session's append-only history.
type SessionReader interface {
	ListMessages(ctx context.Context, sessionID string) ([]domain.SessionMessage, error)
}

// CatalogIngestor is the inbound contract for catalog upload orchestration.
type CatalogIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.CatalogJob, error)
}

// CatalogReader is the inbound read model for catalog job state.
type CatalogReader interface {
	GetJobByID(ctx context.Context, id string) (*domain.CatalogJob, error)
}

// CatalogProcessor is the inbound contract for asynchronous catalog
// processing.
type CatalogProcessor interface {
	ProcessByID(ctx context.Context, jobID string) error
}
