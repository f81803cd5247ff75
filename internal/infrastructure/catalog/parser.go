package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

// Parser reads an uploaded catalog file from object storage and produces
// enriched products. CSV and XLSX catalogs are supported; rows whose article
// type is outside the clothing set are skipped.
type Parser struct {
	storage      ports.ObjectStorage
	explanations map[string]string
}

func NewParser(storage ports.ObjectStorage, explanations map[string]string) *Parser {
	if explanations == nil {
		explanations = categoryExplanations
	}
	return &Parser{storage: storage, explanations: explanations}
}

func (p *Parser) Parse(ctx context.Context, job *domain.CatalogJob) ([]domain.CatalogProduct, error) {
	reader, err := p.storage.Open(ctx, job.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer reader.Close()

	var records []rawRecord
	switch {
	case isXLSX(job):
		records, err = parseXLSX(reader)
	case isCSV(job):
		records, err = parseCSV(reader)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse catalog",
			fmt.Errorf("unsupported catalog format: %s (%s)", job.Filename, job.MimeType))
	}
	if err != nil {
		return nil, err
	}

	products := make([]domain.CatalogProduct, 0, len(records))
	for _, record := range records {
		if record.ID == "" || record.DisplayName == "" {
			continue
		}
		if !clothingArticleTypes[record.ArticleType] {
			continue
		}
		products = append(products, enrich(record, p.explanations))
	}
	return products, nil
}

func isCSV(job *domain.CatalogJob) bool {
	if strings.Contains(job.MimeType, "csv") {
		return true
	}
	return strings.EqualFold(filepath.Ext(job.Filename), ".csv")
}

func isXLSX(job *domain.CatalogJob) bool {
	if strings.Contains(job.MimeType, "spreadsheetml") {
		return true
	}
	return strings.EqualFold(filepath.Ext(job.Filename), ".xlsx")
}
