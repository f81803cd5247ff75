package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

// IngestCatalogUseCase accepts catalog uploads: stores the file, records a
// job row and notifies the worker pool.
type IngestCatalogUseCase struct {
	repo    ports.CatalogRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestCatalogUseCase(
	repo ports.CatalogRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestCatalogUseCase {
	return &IngestCatalogUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestCatalogUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.CatalogJob, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	job := &domain.CatalogJob{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.JobUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create catalog job: %w", err)
	}

	if err := uc.queue.PublishCatalogUploaded(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish catalog event: %w", err)
	}

	return job, nil
}

func (uc *IngestCatalogUseCase) GetJobByID(ctx context.Context, id string) (*domain.CatalogJob, error) {
	job, err := uc.repo.GetJobByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog job: %w", err)
	}
	return job, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "catalog.bin"
	}
	return base
}
