package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

func TestUpsertProductsEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/products":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/products/points":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	index := NewProductIndex(server.URL, "products")
	products := []domain.CatalogProduct{
		{ID: "101", DisplayName: "Blue Shirt"},
		{ID: "102", DisplayName: "Red Dress"},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := index.UpsertProducts(context.Background(), products, vectors); err != nil {
		t.Fatalf("first UpsertProducts() error = %v", err)
	}
	if err := index.UpsertProducts(context.Background(), products, vectors); err != nil {
		t.Fatalf("second UpsertProducts() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}
}

func TestUpsertProductsReusesPointIDs(t *testing.T) {
	var seenIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/products":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/products/points":
			var body struct {
				Points []struct {
					ID string `json:"id"`
				} `json:"points"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode upsert body: %v", err)
			}
			for _, p := range body.Points {
				seenIDs = append(seenIDs, p.ID)
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	index := NewProductIndex(server.URL, "products")
	products := []domain.CatalogProduct{{ID: "101", DisplayName: "Blue Shirt"}}
	vectors := [][]float32{{0.1, 0.2}}

	if err := index.UpsertProducts(context.Background(), products, vectors); err != nil {
		t.Fatalf("first UpsertProducts() error = %v", err)
	}
	if err := index.UpsertProducts(context.Background(), products, vectors); err != nil {
		t.Fatalf("second UpsertProducts() error = %v", err)
	}
	if len(seenIDs) != 2 || seenIDs[0] != seenIDs[1] {
		t.Fatalf("expected a stable point id across upserts, got %v", seenIDs)
	}
}

func TestSearchClampsScoresAndSortsDescending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/products/points/search" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":[
				{"score":0.4,"payload":{"product_id":"2","document":"b"}},
				{"score":1.2,"payload":{"product_id":"1","document":"a"}},
				{"score":-0.1,"payload":{"product_id":"3","document":"c"}}
			]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	index := NewProductIndex(server.URL, "products")
	hits, err := index.Search(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ProductID != "1" || hits[0].Similarity != 1 {
		t.Fatalf("expected clamped top hit product 1, got %+v", hits[0])
	}
	if hits[2].ProductID != "3" || hits[2].Similarity != 0 {
		t.Fatalf("expected clamped bottom hit product 3, got %+v", hits[2])
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Similarity < hits[i].Similarity {
			t.Fatalf("hits not sorted by similarity: %+v", hits)
		}
	}
}

func TestSearchRejectsEmptyQueryVector(t *testing.T) {
	index := NewProductIndex("http://127.0.0.1:0", "products")
	_, err := index.Search(context.Background(), nil, 3)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSearchIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection missing", http.StatusNotFound)
	}))
	defer server.Close()

	index := NewProductIndex(server.URL, "products")
	_, err := index.Search(context.Background(), []float32{0.1}, 3)
	if err == nil || !strings.Contains(err.Error(), "collection missing") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestFAQIndexSearchReturnsPassages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/faqs":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/faqs/points":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/faqs/points/search":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":[
				{"score":0.9,"payload":{"passage_index":1,"text":"Returns accepted within 30 days."}},
				{"score":0.5,"payload":{"passage_index":0,"text":"We ship worldwide."}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	index := NewFAQIndex(server.URL, "faqs")
	err := index.IndexPassages(context.Background(), []string{"We ship worldwide.", "Returns accepted within 30 days."}, [][]float32{{0.1, 0.2}, {0.3, 0.4}})
	if err != nil {
		t.Fatalf("IndexPassages() error = %v", err)
	}

	passages, err := index.Search(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].Index != 1 || passages[0].Text != "Returns accepted within 30 days." {
		t.Fatalf("unexpected top passage %+v", passages[0])
	}
}
