package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

type fakeGenerator struct {
	textResponses []string
	textErr       error
	jsonResponses []string
	jsonErr       error

	textPrompts []string
	jsonPrompts []string
}

func (f *fakeGenerator) GenerateFromPrompt(_ context.Context, prompt string) (string, error) {
	f.textPrompts = append(f.textPrompts, prompt)
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.textResponses) == 0 {
		return "generated text", nil
	}
	out := f.textResponses[0]
	f.textResponses = f.textResponses[1:]
	return out, nil
}

func (f *fakeGenerator) GenerateJSONFromPrompt(_ context.Context, prompt string) (string, error) {
	f.jsonPrompts = append(f.jsonPrompts, prompt)
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	if len(f.jsonResponses) == 0 {
		return "{}", nil
	}
	out := f.jsonResponses[0]
	f.jsonResponses = f.jsonResponses[1:]
	return out, nil
}

type fakeEmbedder struct {
	queryVector []float32
	queryErr    error
	queryCalls  int
	embedErr    error
	embedCalls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryVector == nil {
		return []float32{0.1, 0.2}, nil
	}
	return f.queryVector, nil
}

type fakeVision struct {
	description string
	err         error
	calls       int
}

func (f *fakeVision) Describe(_ context.Context, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.description, nil
}

type fakeFAQIndex struct {
	results  [][]domain.FAQPassage
	err      error
	searches int
	indexed  []string
}

func (f *fakeFAQIndex) IndexPassages(_ context.Context, passages []string, _ [][]float32) error {
	f.indexed = append(f.indexed, passages...)
	return f.err
}

func (f *fakeFAQIndex) Search(_ context.Context, _ []float32, _ int) ([]domain.FAQPassage, error) {
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	out := f.results[0]
	f.results = f.results[1:]
	return out, nil
}

type fakeProductIndex struct {
	hits      []domain.ProductHit
	searchErr error
	searches  int
	upserts   [][]domain.CatalogProduct
}

func (f *fakeProductIndex) UpsertProducts(_ context.Context, products []domain.CatalogProduct, _ [][]float32) error {
	f.upserts = append(f.upserts, products)
	return nil
}

func (f *fakeProductIndex) Search(_ context.Context, _ []float32, topK int) ([]domain.ProductHit, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > topK {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

type fakeSessionStore struct {
	messages  []domain.SessionMessage
	ensureErr error
}

func (f *fakeSessionStore) EnsureSession(_ context.Context, sessionID string) (*domain.ChatSession, error) {
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	return &domain.ChatSession{ID: sessionID}, nil
}

func (f *fakeSessionStore) AppendMessage(_ context.Context, message domain.SessionMessage) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSessionStore) ListMessages(_ context.Context, sessionID string) ([]domain.SessionMessage, error) {
	var out []domain.SessionMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeObjectStorage struct {
	files   map[string][]byte
	saveErr error
	removed []string
}

func (f *fakeObjectStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[key] = raw
	return nil
}

func (f *fakeObjectStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeObjectStorage) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.files, key)
	return nil
}

type fakeCatalogRepo struct {
	jobs     map[string]*domain.CatalogJob
	statuses []string
	counts   []int
}

func (f *fakeCatalogRepo) CreateJob(_ context.Context, job *domain.CatalogJob) error {
	if f.jobs == nil {
		f.jobs = map[string]*domain.CatalogJob{}
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeCatalogRepo) GetJobByID(_ context.Context, id string) (*domain.CatalogJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrJobNotFound, "get catalog job", fmt.Errorf("id %s", id))
	}
	copied := *job
	return &copied, nil
}

func (f *fakeCatalogRepo) UpdateJobStatus(_ context.Context, id string, status domain.CatalogJobStatus, errMessage string) error {
	f.statuses = append(f.statuses, string(status))
	if job, ok := f.jobs[id]; ok {
		job.Status = status
		job.Error = errMessage
	}
	return nil
}

func (f *fakeCatalogRepo) SetJobProductCount(_ context.Context, id string, count int) error {
	f.counts = append(f.counts, count)
	if job, ok := f.jobs[id]; ok {
		job.ProductCount = count
	}
	return nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishCatalogUploaded(_ context.Context, jobID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *fakeQueue) SubscribeCatalogUploaded(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeParser struct {
	products []domain.CatalogProduct
	err      error
}

func (f *fakeParser) Parse(_ context.Context, _ *domain.CatalogJob) ([]domain.CatalogProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type fakeSplitter struct {
	passages []string
}

func (f *fakeSplitter) Split(_ string) []string {
	return f.passages
}
