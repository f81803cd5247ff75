package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

// FAQBootstrapUseCase indexes the company FAQ corpus at startup: split into
// passages, embed in batches, upsert into the FAQ collection. Passage indexes
// are stable ids, so restarting overwrites rather than duplicates.
type FAQBootstrapUseCase struct {
	splitter  ports.PassageSplitter
	embedder  ports.Embedder
	faqIndex  ports.FAQIndex
	batchSize int
}

func NewFAQBootstrapUseCase(
	splitter ports.PassageSplitter,
	embedder ports.Embedder,
	faqIndex ports.FAQIndex,
	batchSize int,
) *FAQBootstrapUseCase {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &FAQBootstrapUseCase{
		splitter:  splitter,
		embedder:  embedder,
		faqIndex:  faqIndex,
		batchSize: batchSize,
	}
}

func (uc *FAQBootstrapUseCase) IndexCorpus(ctx context.Context, text string) (int, error) {
	passages := uc.splitter.Split(text)
	if len(passages) == 0 {
		return 0, errors.New("faq corpus produced no passages")
	}

	vectors := make([][]float32, 0, len(passages))
	for start := 0; start < len(passages); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch, err := uc.embedder.Embed(ctx, passages[start:end])
		if err != nil {
			return 0, fmt.Errorf("embed faq passages: %w", err)
		}
		vectors = append(vectors, batch...)
	}

	if err := uc.faqIndex.IndexPassages(ctx, passages, vectors); err != nil {
		return 0, fmt.Errorf("index faq passages: %w", err)
	}
	return len(passages), nil
}
