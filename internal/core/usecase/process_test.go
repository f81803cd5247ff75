package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

func TestUploadStoresFileCreatesJobAndPublishes(t *testing.T) {
	repo := &fakeCatalogRepo{}
	storage := &fakeObjectStorage{}
	queue := &fakeQueue{}
	uc := NewIngestCatalogUseCase(repo, storage, queue)

	job, err := uc.Upload(context.Background(), "summer styles.csv", "text/csv", strings.NewReader("id,productDisplayName\n"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if job.Status != domain.JobUploaded {
		t.Fatalf("expected uploaded status, got %s", job.Status)
	}
	if !strings.HasSuffix(job.StoragePath, "_summer_styles.csv") {
		t.Fatalf("unexpected storage key %q", job.StoragePath)
	}
	if _, ok := storage.files[job.StoragePath]; !ok {
		t.Fatalf("file not saved under %q", job.StoragePath)
	}
	if len(queue.published) != 1 || queue.published[0] != job.ID {
		t.Fatalf("expected published job id, got %v", queue.published)
	}
}

func TestUploadPublishFailureSurfaces(t *testing.T) {
	uc := NewIngestCatalogUseCase(&fakeCatalogRepo{}, &fakeObjectStorage{}, &fakeQueue{publishErr: errors.New("nats down")})
	_, err := uc.Upload(context.Background(), "styles.csv", "text/csv", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "publish catalog event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestProcessByIDHappyPathBatchesAndMarksReady(t *testing.T) {
	repo := &fakeCatalogRepo{jobs: map[string]*domain.CatalogJob{
		"job-1": {ID: "job-1", Status: domain.JobUploaded},
	}}
	products := make([]domain.CatalogProduct, 5)
	for i := range products {
		products[i] = domain.CatalogProduct{ID: string(rune('a' + i)), DisplayName: "P", Document: "doc"}
	}
	index := &fakeProductIndex{}
	uc := NewProcessCatalogUseCase(repo, &fakeParser{products: products}, &fakeEmbedder{}, index, 2)

	if err := uc.ProcessByID(context.Background(), "job-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if got := strings.Join(repo.statuses, ","); got != "processing,ready" {
		t.Fatalf("unexpected status transitions %q", got)
	}
	if len(repo.counts) != 1 || repo.counts[0] != 5 {
		t.Fatalf("expected product count 5, got %v", repo.counts)
	}
	// 5 products at batch size 2 -> 3 upserts.
	if len(index.upserts) != 3 {
		t.Fatalf("expected 3 batched upserts, got %d", len(index.upserts))
	}
}

func TestProcessByIDParseFailureMarksFailed(t *testing.T) {
	repo := &fakeCatalogRepo{jobs: map[string]*domain.CatalogJob{
		"job-1": {ID: "job-1", Status: domain.JobUploaded},
	}}
	uc := NewProcessCatalogUseCase(repo, &fakeParser{err: errors.New("broken header")}, &fakeEmbedder{}, &fakeProductIndex{}, 2)

	err := uc.ProcessByID(context.Background(), "job-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := strings.Join(repo.statuses, ","); got != "processing,failed" {
		t.Fatalf("unexpected status transitions %q", got)
	}
	if repo.jobs["job-1"].Error == "" {
		t.Fatalf("expected failure message persisted")
	}
}

func TestProcessByIDEmptyCatalogFails(t *testing.T) {
	repo := &fakeCatalogRepo{jobs: map[string]*domain.CatalogJob{
		"job-1": {ID: "job-1", Status: domain.JobUploaded},
	}}
	uc := NewProcessCatalogUseCase(repo, &fakeParser{}, &fakeEmbedder{}, &fakeProductIndex{}, 2)

	err := uc.ProcessByID(context.Background(), "job-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFAQBootstrapIndexesPassagesInBatches(t *testing.T) {
	splitter := &fakeSplitter{passages: []string{"p1", "p2", "p3"}}
	embedder := &fakeEmbedder{}
	faqs := &fakeFAQIndex{}
	uc := NewFAQBootstrapUseCase(splitter, embedder, faqs, 2)

	count, err := uc.IndexCorpus(context.Background(), "corpus text")
	if err != nil {
		t.Fatalf("IndexCorpus() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 passages, got %d", count)
	}
	if embedder.embedCalls != 2 {
		t.Fatalf("expected 2 embed batches, got %d", embedder.embedCalls)
	}
	if len(faqs.indexed) != 3 {
		t.Fatalf("expected 3 indexed passages, got %d", len(faqs.indexed))
	}
}

func TestFAQBootstrapEmptyCorpusFails(t *testing.T) {
	uc := NewFAQBootstrapUseCase(&fakeSplitter{}, &fakeEmbedder{}, &fakeFAQIndex{}, 2)
	if _, err := uc.IndexCorpus(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty corpus")
	}
}
