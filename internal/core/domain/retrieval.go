package domain

// ProductHit is one ranked nearest-neighbor match from the product index.
// Similarity is 1 - distance, clamped into [0,1]; higher is more similar.
type ProductHit struct {
	ProductID  string            `json:"product_id"`
	Document   string            `json:"document,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity_score"`
}

// FAQPassage is one matching passage from the company FAQ corpus.
type FAQPassage struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
