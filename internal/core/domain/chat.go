package domain

// Query is the immutable input of one routing/pipeline invocation.
// ImageKey references an uploaded image in object storage; empty means
// text-only.
type Query struct {
	Text     string `json:"text"`
	ImageKey string `json:"image_key,omitempty"`
}

func (q Query) HasImage() bool {
	return q.ImageKey != ""
}

type RouteKind string

const (
	RouteFAQ       RouteKind = "faq"
	RouteSmallTalk RouteKind = "small_talk"
	RouteComplaint RouteKind = "complaint"
	RouteDelegate  RouteKind = "delegate"
	RouteError     RouteKind = "error"
)

// RoutingDecision is the tagged outcome of the router. Answer is set for
// every kind except RouteDelegate, which hands the query to the product
// search pipeline.
type RoutingDecision struct {
	Kind   RouteKind `json:"kind"`
	Answer string    `json:"answer,omitempty"`
}

type ResultSource string

const (
	SourceFAQ             ResultSource = "faq"
	SourceEcommerce       ResultSource = "ecommerce"
	SourceRoutingError    ResultSource = "routing_error"
	SourceProcessingError ResultSource = "processing_error"
	SourceImportError     ResultSource = "import_error"
)

type ProductSummary struct {
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Link        string            `json:"link,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ChatResult is the structured answer rendered by the chat surface.
type ChatResult struct {
	SessionID string           `json:"session_id"`
	Message   string           `json:"message"`
	Products  []ProductSummary `json:"products"`
	Source    ResultSource     `json:"source"`
}

// PipelineState is threaded through the six product-search stages. Each
// stage writes only its own fields and never mutates fields written by an
// earlier stage.
type PipelineState struct {
	RawQuery Query
	TopK     int

	// Stage 1: query analysis.
	Intent string

	// Stage 2: vision description. Provider failures leave an error string
	// here instead of aborting the pipeline.
	GarmentDescription string

	// Stage 3: query rewriting.
	RewrittenQuery string

	// Stage 4: retrieval. ImageVector is an optional precomputed image
	// embedding blended into the lookup; the interactive path leaves it nil.
	ImageVector []float32
	Candidates  []ProductHit

	// Stage 5: verification.
	Verified []ProductHit

	// Stage 6: presentation.
	FinalMessage  string
	FinalProducts []ProductSummary
}
