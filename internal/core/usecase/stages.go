package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

type StageLimits struct {
	LLMTimeout    time.Duration
	VisionTimeout time.Duration
	SearchTimeout time.Duration
	TopK          int
	WeightImage   float64
}

func (l StageLimits) normalize() StageLimits {
	if l.LLMTimeout <= 0 {
		l.LLMTimeout = 60 * time.Second
	}
	if l.VisionTimeout <= 0 {
		l.VisionTimeout = 90 * time.Second
	}
	if l.SearchTimeout <= 0 {
		l.SearchTimeout = 15 * time.Second
	}
	if l.TopK <= 0 {
		l.TopK = 5
	}
	return l
}

// NewSearchStages builds the six product-search stages in their fixed order.
func NewSearchStages(
	generator ports.TextGenerator,
	vision ports.VisionDescriber,
	embedder ports.Embedder,
	products ports.ProductIndex,
	storage ports.ObjectStorage,
	limits StageLimits,
) []Stage {
	limits = limits.normalize()
	return []Stage{
		&analyzeStage{generator: generator, limits: limits},
		&describeStage{vision: vision, storage: storage, limits: limits},
		&rewriteStage{generator: generator, limits: limits},
		&retrieveStage{embedder: embedder, products: products, limits: limits},
		&verifyStage{generator: generator, limits: limits},
		&presentStage{generator: generator, limits: limits},
	}
}

// analyzeStage extracts the shopping intent behind the raw query. A model
// failure falls back to the raw text so later stages always have an intent.
type analyzeStage struct {
	generator ports.TextGenerator
	limits    StageLimits
}

func (s *analyzeStage) Name() string { return "analyze" }

func (s *analyzeStage) Run(ctx context.Context, state *domain.PipelineState) error {
	llmCtx, cancel := context.WithTimeout(ctx, s.limits.LLMTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Analyze this clothing store customer query and summarize the shopping intent in one sentence: garment kind, colours, occasion, style and any constraints mentioned.
Return only the summary sentence.
Query: %s`, state.RawQuery.Text)

	intent, err := s.generator.GenerateFromPrompt(llmCtx, prompt)
	intent = strings.TrimSpace(intent)
	if err != nil || intent == "" {
		state.Intent = state.RawQuery.Text
		return nil
	}
	state.Intent = intent
	return nil
}

// describeStage produces a structured garment description of the uploaded
// image. Without an image it records that; provider failures leave an error
// string in place so the run continues text-only.
type describeStage struct {
	vision  ports.VisionDescriber
	storage ports.ObjectStorage
	limits  StageLimits
}

func (s *describeStage) Name() string { return "describe" }

func (s *describeStage) Run(ctx context.Context, state *domain.PipelineState) error {
	if !state.RawQuery.HasImage() {
		state.GarmentDescription = "No image provided."
		return nil
	}

	image, err := s.readImage(ctx, state.RawQuery.ImageKey)
	if err != nil {
		state.GarmentDescription = fmt.Sprintf("Error: could not read the uploaded image: %v", err)
		return nil
	}

	visionCtx, cancel := context.WithTimeout(ctx, s.limits.VisionTimeout)
	defer cancel()

	description, err := s.vision.Describe(visionCtx, image, "")
	if err != nil {
		state.GarmentDescription = fmt.Sprintf("Error: %v", err)
		return nil
	}
	state.GarmentDescription = strings.TrimSpace(description)
	return nil
}

func (s *describeStage) readImage(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.storage.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// rewriteStage turns intent plus garment description into one retrieval
// query matching the catalog document phrasing.
type rewriteStage struct {
	generator ports.TextGenerator
	limits    StageLimits
}

func (s *rewriteStage) Name() string { return "rewrite" }

func (s *rewriteStage) Run(ctx context.Context, state *domain.PipelineState) error {
	llmCtx, cancel := context.WithTimeout(ctx, s.limits.LLMTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Write one concise product search query for a clothing catalog, combining the shopping intent and the garment description below. Mention garment type, colour, gender, usage and season when known. Ignore any description that starts with "Error:".
Return only the query text.
Shopping intent: %s
Garment description: %s`, state.Intent, state.GarmentDescription)

	rewritten, err := s.generator.GenerateFromPrompt(llmCtx, prompt)
	rewritten = strings.Trim(strings.TrimSpace(rewritten), `"`)
	if err != nil || rewritten == "" {
		rewritten = state.Intent
		if state.GarmentDescription != "" && !strings.HasPrefix(state.GarmentDescription, "Error:") &&
			state.GarmentDescription != "No image provided." {
			rewritten = state.Intent + " " + state.GarmentDescription
		}
	}
	state.RewrittenQuery = rewritten
	return nil
}

// retrieveStage embeds the rewritten query, optionally blends in an image
// vector, and searches the product index. This is the only stage whose
// failure aborts the pipeline: without candidates nothing downstream can run.
type retrieveStage struct {
	embedder ports.Embedder
	products ports.ProductIndex
	limits   StageLimits
}

func (s *retrieveStage) Name() string { return "retrieve" }

func (s *retrieveStage) Run(ctx context.Context, state *domain.PipelineState) error {
	searchCtx, cancel := context.WithTimeout(ctx, s.limits.SearchTimeout)
	defer cancel()

	textVector, err := s.embedder.EmbedQuery(searchCtx, state.RewrittenQuery)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	queryVector, err := BlendVectors(textVector, state.ImageVector, s.limits.WeightImage)
	if err != nil {
		return fmt.Errorf("blend vectors: %w", err)
	}

	topK := state.TopK
	if topK <= 0 {
		topK = s.limits.TopK
	}
	hits, err := s.products.Search(searchCtx, queryVector, topK)
	if err != nil {
		return fmt.Errorf("product search: %w", err)
	}
	state.Candidates = hits
	return nil
}

// verifyStage asks the model which candidates actually match the request.
// The answer is constrained in code to a subset of the candidates; on any
// model failure every candidate is kept.
type verifyStage struct {
	generator ports.TextGenerator
	limits    StageLimits
}

func (s *verifyStage) Name() string { return "verify" }

func (s *verifyStage) Run(ctx context.Context, state *domain.PipelineState) error {
	if len(state.Candidates) == 0 {
		state.Verified = nil
		return nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.limits.LLMTimeout)
	defer cancel()

	raw, err := s.generator.GenerateJSONFromPrompt(llmCtx, buildVerifyPrompt(state))
	if err != nil {
		state.Verified = state.Candidates
		return nil
	}

	var verdict struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &verdict); err != nil || len(verdict.ProductIDs) == 0 {
		state.Verified = state.Candidates
		return nil
	}

	byID := make(map[string]domain.ProductHit, len(state.Candidates))
	for _, hit := range state.Candidates {
		byID[hit.ProductID] = hit
	}
	verified := make([]domain.ProductHit, 0, len(verdict.ProductIDs))
	seen := make(map[string]bool, len(verdict.ProductIDs))
	for _, id := range verdict.ProductIDs {
		hit, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		verified = append(verified, hit)
	}
	if len(verified) == 0 {
		state.Verified = state.Candidates
		return nil
	}
	state.Verified = verified
	return nil
}

func buildVerifyPrompt(state *domain.PipelineState) string {
	var b strings.Builder
	for _, hit := range state.Candidates {
		fmt.Fprintf(&b, "- id=%s: %s\n", hit.ProductID, strings.TrimSpace(hit.Document))
	}
	return fmt.Sprintf(`A customer of a clothing store asked: %q
Shopping intent: %s
Garment description: %s

Candidate products:
%s
Return only a JSON object listing the ids of the candidates that genuinely match the request, best first:
{"product_ids":["...","..."]}`, state.RawQuery.Text, state.Intent, state.GarmentDescription, b.String())
}

// presentStage writes the final customer-facing message. The product list is
// assembled in code from the verified hits; only the wording comes from the
// model, with a deterministic fallback.
type presentStage struct {
	generator ports.TextGenerator
	limits    StageLimits
}

func (s *presentStage) Name() string { return "present" }

func (s *presentStage) Run(ctx context.Context, state *domain.PipelineState) error {
	state.FinalProducts = summarizeHits(state.Verified)

	if len(state.Verified) == 0 {
		state.FinalMessage = "I couldn't find matching products for that request. Could you describe the garment, colour or occasion differently?"
		return nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.limits.LLMTimeout)
	defer cancel()

	var b strings.Builder
	for _, p := range state.FinalProducts {
		fmt.Fprintf(&b, "- %s\n", p.ProductName)
	}
	prompt := fmt.Sprintf(`Write a short, friendly message for a clothing store customer, presenting these matching products and inviting them to take a look. Do not invent products.
Customer request: %s
Products:
%s
Return only the message text.`, state.RawQuery.Text, b.String())

	message, err := s.generator.GenerateFromPrompt(llmCtx, prompt)
	message = strings.TrimSpace(message)
	if err != nil || message == "" {
		message = fmt.Sprintf("Here are %d products that match your request.", len(state.FinalProducts))
	}
	state.FinalMessage = message
	return nil
}

func summarizeHits(hits []domain.ProductHit) []domain.ProductSummary {
	summaries := make([]domain.ProductSummary, 0, len(hits))
	for _, hit := range hits {
		summaries = append(summaries, domain.ProductSummary{
			ProductID:   hit.ProductID,
			ProductName: hit.Metadata["product_name"],
			Link:        hit.Metadata["link"],
			Metadata:    hit.Metadata,
		})
	}
	return summaries
}
