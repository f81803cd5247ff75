package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

const (
	routingErrorMessage = "I'm having trouble processing your request. Please try rephrasing your question."
	importErrorMessage  = "System error: Unable to load the assistant's knowledge base. Please check your setup."
)

// ChatUseCase runs one routed chat turn: route the query, answer directly or
// hand off to the product search pipeline, and append both sides of the turn
// to the session history.
type ChatUseCase struct {
	router   *Router
	pipeline *Pipeline
	sessions ports.SessionStore

	// initErr marks a failed knowledge-base bootstrap (FAQ corpus missing or
	// unindexable). Each request then answers with an import_error result
	// instead of the process crashing.
	initErr error
}

func NewChatUseCase(router *Router, pipeline *Pipeline, sessions ports.SessionStore) *ChatUseCase {
	return &ChatUseCase{
		router:   router,
		pipeline: pipeline,
		sessions: sessions,
	}
}

// MarkInitFailed records a fatal collaborator bootstrap error.
func (uc *ChatUseCase) MarkInitFailed(err error) {
	uc.initErr = err
}

func (uc *ChatUseCase) Chat(ctx context.Context, sessionID string, query domain.Query, topK int) (*domain.ChatResult, error) {
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" && !query.HasImage() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("text or image is required"))
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if _, err := uc.sessions.EnsureSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}
	if err := uc.sessions.AppendMessage(ctx, domain.SessionMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Origin:    domain.MessageOriginHuman,
		Content:   query.Text,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	result := uc.answer(ctx, query, topK)
	result.SessionID = sessionID
	if result.Products == nil {
		result.Products = []domain.ProductSummary{}
	}

	if err := uc.sessions.AppendMessage(ctx, domain.SessionMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Origin:    domain.MessageOriginAI,
		Content:   result.Message,
		Source:    result.Source,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}
	return result, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, sessionID string) ([]domain.SessionMessage, error) {
	return uc.sessions.ListMessages(ctx, sessionID)
}

func (uc *ChatUseCase) answer(ctx context.Context, query domain.Query, topK int) *domain.ChatResult {
	if uc.initErr != nil {
		return &domain.ChatResult{Message: importErrorMessage, Source: domain.SourceImportError}
	}

	decision := uc.router.Route(ctx, query)
	switch decision.Kind {
	case domain.RouteDelegate:
		return uc.runPipeline(ctx, query, topK)
	case domain.RouteError:
		return &domain.ChatResult{Message: routingErrorMessage, Source: domain.SourceRoutingError}
	default:
		// Non-delegated answers (FAQ, small talk, complaint handling) all
		// surface as faq results.
		return &domain.ChatResult{Message: decision.Answer, Source: domain.SourceFAQ}
	}
}

func (uc *ChatUseCase) runPipeline(ctx context.Context, query domain.Query, topK int) *domain.ChatResult {
	state, err := uc.pipeline.Run(ctx, query, topK)
	if err != nil {
		return &domain.ChatResult{
			Message: fmt.Sprintf("An error occurred while processing your request: %v", err),
			Source:  domain.SourceProcessingError,
		}
	}

	message, products := unwrapNestedResult(state.FinalMessage, state.FinalProducts)
	return &domain.ChatResult{
		Message:  message,
		Products: products,
		Source:   domain.SourceEcommerce,
	}
}

// unwrapNestedResult handles a model quirk where the final message itself is
// a JSON object with message/products fields. Exactly one unwrap pass; a
// still-nested payload is returned as-is.
func unwrapNestedResult(message string, products []domain.ProductSummary) (string, []domain.ProductSummary) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "{") {
		return message, products
	}
	var nested struct {
		Message  string                  `json:"message"`
		Products []domain.ProductSummary `json:"products"`
	}
	if err := json.Unmarshal([]byte(trimmed), &nested); err != nil {
		return message, products
	}
	if nested.Message != "" {
		message = nested.Message
	}
	if len(nested.Products) > 0 {
		products = nested.Products
	}
	return message, products
}
