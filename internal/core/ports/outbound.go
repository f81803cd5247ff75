package ports

import (
	"context"
	"io"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

// CatalogRepository persists catalog ingestion job state.
type CatalogRepository interface {
	CreateJob(ctx context.Context, job *domain.CatalogJob) error
	GetJobByID(ctx context.Context, id string) (*domain.CatalogJob, error)
	UpdateJobStatus(ctx context.Context, id string, status domain.CatalogJobStatus, errMessage string) error
	SetJobProductCount(ctx context.Context, id string, count int) error
}

// SessionStore persists per-session chat history.
type SessionStore interface {
	EnsureSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	AppendMessage(ctx context.Context, message domain.SessionMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.SessionMessage, error)
}

// ObjectStorage stores uploaded catalog files and chat images.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes catalog ingestion events.
type MessageQueue interface {
	PublishCatalogUploaded(ctx context.Context, jobID string) error
	SubscribeCatalogUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// CatalogParser reads a stored catalog file into indexable products.
type CatalogParser interface {
	Parse(ctx context.Context, job *domain.CatalogJob) ([]domain.CatalogProduct, error)
}

// Embedder builds vectors for catalog documents, FAQ passages and queries.
// Queries are always passed as plain strings.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// TextGenerator creates free-form or strict-JSON model output.
type TextGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, error)
	GenerateJSONFromPrompt(ctx context.Context, prompt string) (string, error)
}

// VisionDescriber produces a structured garment description for an image.
type VisionDescriber interface {
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ProductIndex is the nearest-neighbor store over the product catalog.
// Search is read-only from the interactive path.
type ProductIndex interface {
	UpsertProducts(ctx context.Context, products []domain.CatalogProduct, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.ProductHit, error)
}

// FAQIndex holds the embedded passages of the company FAQ document.
type FAQIndex interface {
	IndexPassages(ctx context.Context, passages []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, topK int) ([]domain.FAQPassage, error)
}

// PassageSplitter splits the FAQ corpus into indexable passages.
type PassageSplitter interface {
	Split(text string) []string
}
