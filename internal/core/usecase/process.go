package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

// ProcessCatalogUseCase is the worker side of catalog ingestion: parse the
// stored file, embed each product document in batches and upsert the vectors.
type ProcessCatalogUseCase struct {
	repo      ports.CatalogRepository
	parser    ports.CatalogParser
	embedder  ports.Embedder
	products  ports.ProductIndex
	batchSize int
}

func NewProcessCatalogUseCase(
	repo ports.CatalogRepository,
	parser ports.CatalogParser,
	embedder ports.Embedder,
	products ports.ProductIndex,
	batchSize int,
) *ProcessCatalogUseCase {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &ProcessCatalogUseCase{
		repo:      repo,
		parser:    parser,
		embedder:  embedder,
		products:  products,
		batchSize: batchSize,
	}
}

func (uc *ProcessCatalogUseCase) ProcessByID(ctx context.Context, jobID string) error {
	if err := uc.markStatus(ctx, jobID, domain.JobProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	count, err := uc.processJob(ctx, jobID)
	if err != nil {
		if failErr := uc.markFailed(ctx, jobID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SetJobProductCount(ctx, jobID, count); err != nil {
		return fmt.Errorf("set product count: %w", err)
	}
	if err := uc.markStatus(ctx, jobID, domain.JobReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessCatalogUseCase) processJob(ctx context.Context, jobID string) (int, error) {
	job, err := uc.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog job by id: %w", err)
	}

	products, err := uc.parser.Parse(ctx, job)
	if err != nil {
		return 0, fmt.Errorf("parse catalog: %w", err)
	}
	if len(products) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse catalog", errors.New("no indexable clothing products"))
	}

	for start := 0; start < len(products); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		texts := make([]string, 0, len(batch))
		for _, p := range batch {
			texts = append(texts, p.Document)
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed catalog batch: %w", err)
		}
		if err := uc.products.UpsertProducts(ctx, batch, vectors); err != nil {
			return 0, fmt.Errorf("index catalog batch: %w", err)
		}
	}
	return len(products), nil
}

func (uc *ProcessCatalogUseCase) markStatus(ctx context.Context, jobID string, status domain.CatalogJobStatus, message string) error {
	return uc.repo.UpdateJobStatus(ctx, jobID, status, message)
}

func (uc *ProcessCatalogUseCase) markFailed(ctx context.Context, jobID string, cause error) error {
	return uc.repo.UpdateJobStatus(ctx, jobID, domain.JobFailed, cause.Error())
}
