package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/resilience"
)

// ProductIndex is the nearest-neighbor store over catalog products, one
// point per product id. Vectors use cosine distance; reported similarity is
// 1 - distance, clamped into [0,1].
type ProductIndex struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func NewProductIndex(baseURL, collection string) *ProductIndex {
	return NewProductIndexWithOptions(baseURL, collection, Options{})
}

func NewProductIndexWithOptions(baseURL, collection string, options Options) *ProductIndex {
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ProductIndex{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (x *ProductIndex) UpsertProducts(ctx context.Context, products []domain.CatalogProduct, vectors [][]float32) error {
	if len(products) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(products) != len(vectors) {
		return fmt.Errorf("products/vectors mismatch: %d/%d", len(products), len(vectors))
	}

	if err := x.ensureCollection(ctx, len(vectors[0])); err != nil {
		return wrapTemporaryIfNeeded("product upsert", err)
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(products))
	for i, product := range products {
		points = append(points, point{
			ID:     pointID(product.ID),
			Vector: vectors[i],
			Payload: map[string]any{
				"product_id":   product.ID,
				"product_name": product.DisplayName,
				"article_type": product.ArticleType,
				"link":         product.Link,
				"document":     product.Document,
				"metadata":     product.Metadata,
			},
		})
	}

	err := x.do(ctx, "qdrant.product_upsert", func(callCtx context.Context) error {
		body, err := json.Marshal(map[string]any{"points": points})
		if err != nil {
			return fmt.Errorf("marshal upsert body: %w", err)
		}
		return x.putJSON(callCtx, fmt.Sprintf("/collections/%s/points?wait=true", x.collection), body, "product upsert")
	})
	return wrapTemporaryIfNeeded("product upsert", err)
}

func (x *ProductIndex) Search(ctx context.Context, queryVector []float32, topK int) ([]domain.ProductHit, error) {
	if len(queryVector) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "product search", fmt.Errorf("empty query vector"))
	}
	if topK <= 0 {
		topK = 5
	}

	reqBody, err := json.Marshal(map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err = x.do(ctx, "qdrant.product_search", func(callCtx context.Context) error {
		return x.postJSON(callCtx, fmt.Sprintf("/collections/%s/points/search", x.collection), reqBody, &searchResp, "product search")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("product search", err)
	}

	out := make([]domain.ProductHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		// Cosine score is 1 - distance; clamp keeps float drift inside [0,1].
		out = append(out, domain.ProductHit{
			ProductID:  payloadString(r.Payload, "product_id"),
			Document:   payloadString(r.Payload, "document"),
			Metadata:   payloadStringMap(r.Payload, "metadata"),
			Similarity: clampUnit(r.Score),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (x *ProductIndex) ensureCollection(ctx context.Context, vectorSize int) error {
	x.ensureMu.Lock()
	if x.ensuredCollection && x.ensuredVectorSize == vectorSize {
		x.ensureMu.Unlock()
		return nil
	}
	x.ensureMu.Unlock()

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", x.baseURL, x.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if the collection already exists.
	if resp.StatusCode == http.StatusConflict {
		x.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(respBody)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	x.markCollectionEnsured(vectorSize)
	return nil
}

func (x *ProductIndex) markCollectionEnsured(vectorSize int) {
	x.ensureMu.Lock()
	defer x.ensureMu.Unlock()
	x.ensuredCollection = true
	x.ensuredVectorSize = vectorSize
}

func (x *ProductIndex) do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if x.executor != nil {
		return x.executor.Execute(ctx, operation, fn, classifyQdrantError)
	}
	return fn(ctx)
}

func (x *ProductIndex) putJSON(ctx context.Context, path string, body []byte, operation string) error {
	return doJSON(ctx, x.httpClient, http.MethodPut, x.baseURL+path, body, nil, operation)
}

func (x *ProductIndex) postJSON(ctx context.Context, path string, body []byte, out any, operation string) error {
	return doJSON(ctx, x.httpClient, http.MethodPost, x.baseURL+path, body, out, operation)
}
