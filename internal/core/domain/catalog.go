package domain

import "time"

type CatalogJobStatus string

const (
	JobUploaded   CatalogJobStatus = "uploaded"
	JobProcessing CatalogJobStatus = "processing"
	JobReady      CatalogJobStatus = "ready"
	JobFailed     CatalogJobStatus = "failed"
)

// CatalogJob tracks one uploaded product catalog file through the async
// ingestion path.
type CatalogJob struct {
	ID           string           `json:"id"`
	Filename     string           `json:"filename"`
	MimeType     string           `json:"mime_type"`
	StoragePath  string           `json:"storage_path"`
	Status       CatalogJobStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	ProductCount int              `json:"product_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CatalogProduct is one parsed catalog row ready for indexing. Document is
// the enriched text that gets embedded; Metadata is stored alongside the
// vector and surfaced in search results.
type CatalogProduct struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	ArticleType string            `json:"article_type"`
	Document    string            `json:"document"`
	Link        string            `json:"link,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
