package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

// FAQIndex holds company FAQ passages in their own collection. Passage
// indexes double as point ids, so re-indexing the corpus overwrites in place.
type FAQIndex struct {
	baseURL    string
	collection string
	product    *ProductIndex

	ensureMu sync.Mutex
	ensured  bool
}

func NewFAQIndex(baseURL, collection string) *FAQIndex {
	return NewFAQIndexWithOptions(baseURL, collection, Options{})
}

func NewFAQIndexWithOptions(baseURL, collection string, options Options) *FAQIndex {
	return &FAQIndex{
		baseURL:    baseURL,
		collection: collection,
		product:    NewProductIndexWithOptions(baseURL, collection, options),
	}
}

func (x *FAQIndex) IndexPassages(ctx context.Context, passages []string, vectors [][]float32) error {
	if len(passages) == 0 {
		return nil
	}
	if len(passages) != len(vectors) {
		return fmt.Errorf("passages/vectors mismatch: %d/%d", len(passages), len(vectors))
	}

	if err := x.product.ensureCollection(ctx, len(vectors[0])); err != nil {
		return wrapTemporaryIfNeeded("faq index", err)
	}

	type point struct {
		ID      int            `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(passages))
	for i, passage := range passages {
		points = append(points, point{
			ID:     i,
			Vector: vectors[i],
			Payload: map[string]any{
				"passage_index": i,
				"text":          passage,
			},
		})
	}

	err := x.product.do(ctx, "qdrant.faq_index", func(callCtx context.Context) error {
		body, err := json.Marshal(map[string]any{"points": points})
		if err != nil {
			return fmt.Errorf("marshal faq upsert body: %w", err)
		}
		return x.product.putJSON(callCtx, fmt.Sprintf("/collections/%s/points?wait=true", x.collection), body, "faq index")
	})
	return wrapTemporaryIfNeeded("faq index", err)
}

func (x *FAQIndex) Search(ctx context.Context, queryVector []float32, topK int) ([]domain.FAQPassage, error) {
	if len(queryVector) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "faq search", fmt.Errorf("empty query vector"))
	}
	if topK <= 0 {
		topK = 3
	}

	reqBody, err := json.Marshal(map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal faq search body: %w", err)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err = x.product.do(ctx, "qdrant.faq_search", func(callCtx context.Context) error {
		return x.product.postJSON(callCtx, fmt.Sprintf("/collections/%s/points/search", x.collection), reqBody, &searchResp, "faq search")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("faq search", err)
	}

	out := make([]domain.FAQPassage, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.FAQPassage{
			Index: payloadInt(r.Payload, "passage_index"),
			Text:  payloadString(r.Payload, "text"),
			Score: clampUnit(r.Score),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
