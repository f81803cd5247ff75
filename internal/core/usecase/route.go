package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
)

const (
	routeActionFAQ       = "answer_faq"
	routeActionSmallTalk = "small_talk"
	routeActionComplaint = "complaint"
	routeActionDelegate  = "delegate_to_ecommerce"

	faqNoAnswerMarker = "NO_ANSWER"
)

type RouterLimits struct {
	SearchAttempts int
	FAQTopK        int
	LLMTimeout     time.Duration
	SearchTimeout  time.Duration
}

// Router classifies a query and answers everything except explicit product
// intent, which it hands back as RouteDelegate. It never fails a turn: model
// and search errors degrade to small-talk or apologetic answers.
type Router struct {
	generator ports.TextGenerator
	embedder  ports.Embedder
	faqIndex  ports.FAQIndex
	limits    RouterLimits
	hooks     RouterHooks
}

// RouterHooks receives routing telemetry. Both fields are optional.
type RouterHooks struct {
	Decision    func(kind domain.RouteKind)
	FAQSearches func(count int)
}

func NewRouter(generator ports.TextGenerator, embedder ports.Embedder, faqIndex ports.FAQIndex, limits RouterLimits) *Router {
	if limits.SearchAttempts <= 0 {
		limits.SearchAttempts = 4
	}
	if limits.FAQTopK <= 0 {
		limits.FAQTopK = 3
	}
	if limits.LLMTimeout <= 0 {
		limits.LLMTimeout = 60 * time.Second
	}
	if limits.SearchTimeout <= 0 {
		limits.SearchTimeout = 15 * time.Second
	}
	return &Router{
		generator: generator,
		embedder:  embedder,
		faqIndex:  faqIndex,
		limits:    limits,
	}
}

type routeStep struct {
	Action string `json:"action"`
	Reply  string `json:"reply"`
}

func (r *Router) SetHooks(hooks RouterHooks) {
	r.hooks = hooks
}

func (r *Router) Route(ctx context.Context, query domain.Query) domain.RoutingDecision {
	decision := r.route(ctx, query)
	if r.hooks.Decision != nil {
		r.hooks.Decision(decision.Kind)
	}
	return decision
}

func (r *Router) route(ctx context.Context, query domain.Query) domain.RoutingDecision {
	step, raw, err := r.classify(ctx, query)
	if err != nil {
		// The classifier produced no usable output at all.
		if text := strings.TrimSpace(raw); text != "" && !strings.Contains(strings.ToLower(text), routeActionDelegate) {
			return domain.RoutingDecision{Kind: domain.RouteSmallTalk, Answer: text}
		}
		return domain.RoutingDecision{Kind: domain.RouteError}
	}

	switch step.Action {
	case routeActionDelegate:
		return domain.RoutingDecision{Kind: domain.RouteDelegate}
	case routeActionComplaint:
		return domain.RoutingDecision{Kind: domain.RouteComplaint, Answer: orDefault(step.Reply,
			"I'm so sorry about the trouble with your order. Please share your order number and we will make it right.")}
	case routeActionFAQ:
		return domain.RoutingDecision{Kind: domain.RouteFAQ, Answer: r.answerFAQ(ctx, query.Text)}
	case routeActionSmallTalk:
		return domain.RoutingDecision{Kind: domain.RouteSmallTalk, Answer: orDefault(step.Reply,
			"Hi there! How can I help you today?")}
	default:
		// Ambiguous classification defaults to a friendly answer rather than
		// delegating.
		return domain.RoutingDecision{Kind: domain.RouteSmallTalk, Answer: orDefault(step.Reply,
			"Hi there! How can I help you today?")}
	}
}

func (r *Router) classify(ctx context.Context, query domain.Query) (routeStep, string, error) {
	classifyCtx, cancel := context.WithTimeout(ctx, r.limits.LLMTimeout)
	defer cancel()

	raw, err := r.generator.GenerateJSONFromPrompt(classifyCtx, buildRoutePrompt(query))
	if err != nil {
		return routeStep{}, "", fmt.Errorf("route classification: %w", err)
	}

	step, parseErr := parseRouteStep(raw)
	if parseErr == nil {
		return step, raw, nil
	}

	repairCtx, repairCancel := context.WithTimeout(ctx, r.limits.LLMTimeout)
	repairedRaw, repairErr := r.generator.GenerateJSONFromPrompt(repairCtx, buildRouteRepairPrompt(raw))
	repairCancel()
	if repairErr != nil {
		return routeStep{}, raw, fmt.Errorf("route repair: %w", repairErr)
	}
	step, parseErr = parseRouteStep(repairedRaw)
	if parseErr != nil {
		return routeStep{}, raw, fmt.Errorf("route parse: %w", parseErr)
	}
	return step, repairedRaw, nil
}

// answerFAQ runs the bounded rephrase-and-search loop. Each attempt rephrases
// the question differently, searches the FAQ passages, and asks the model to
// answer strictly from them. Exhaustion falls back to the best passages seen.
func (r *Router) answerFAQ(ctx context.Context, question string) string {
	var bestPassages []domain.FAQPassage
	var bestScore float64
	rephrased := question
	searches := 0
	defer func() {
		if r.hooks.FAQSearches != nil {
			r.hooks.FAQSearches(searches)
		}
	}()

	for attempt := 1; attempt <= r.limits.SearchAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		if text, err := r.rephrase(ctx, question, rephrased, attempt); err == nil && text != "" {
			rephrased = text
		}

		searches++
		passages, err := r.searchFAQ(ctx, rephrased)
		if err != nil || len(passages) == 0 {
			continue
		}
		if passages[0].Score > bestScore {
			bestScore = passages[0].Score
			bestPassages = passages
		}

		answer, err := r.answerFromPassages(ctx, question, passages)
		if err != nil {
			continue
		}
		if answer != "" && !strings.Contains(answer, faqNoAnswerMarker) {
			return answer
		}
	}

	if len(bestPassages) > 0 {
		if answer, err := r.answerFromPassages(ctx, question, bestPassages); err == nil &&
			answer != "" && !strings.Contains(answer, faqNoAnswerMarker) {
			return answer
		}
		// Surface the raw passage rather than giving up entirely.
		return strings.TrimSpace(bestPassages[0].Text)
	}
	return "I couldn't find that in our company guide. Could you rephrase your question, or ask about returns, shipping, or your account?"
}

func (r *Router) rephrase(ctx context.Context, original, previous string, attempt int) (string, error) {
	rephraseCtx, cancel := context.WithTimeout(ctx, r.limits.LLMTimeout)
	defer cancel()

	text, err := r.generator.GenerateFromPrompt(rephraseCtx, buildRephrasePrompt(original, previous, attempt))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(text), `"`), nil
}

func (r *Router) searchFAQ(ctx context.Context, query string) ([]domain.FAQPassage, error) {
	searchCtx, cancel := context.WithTimeout(ctx, r.limits.SearchTimeout)
	defer cancel()

	vector, err := r.embedder.EmbedQuery(searchCtx, query)
	if err != nil {
		return nil, err
	}
	return r.faqIndex.Search(searchCtx, vector, r.limits.FAQTopK)
}

func (r *Router) answerFromPassages(ctx context.Context, question string, passages []domain.FAQPassage) (string, error) {
	answerCtx, cancel := context.WithTimeout(ctx, r.limits.LLMTimeout)
	defer cancel()

	answer, err := r.generator.GenerateFromPrompt(answerCtx, buildFAQAnswerPrompt(question, passages))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func parseRouteStep(raw string) (routeStep, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return routeStep{}, fmt.Errorf("empty router response")
	}
	var step routeStep
	if err := json.Unmarshal([]byte(raw), &step); err != nil {
		return routeStep{}, fmt.Errorf("unmarshal router json: %w", err)
	}
	step.Action = strings.ToLower(strings.TrimSpace(step.Action))
	step.Reply = strings.TrimSpace(step.Reply)
	if step.Action == "" {
		return routeStep{}, fmt.Errorf("router json missing action")
	}
	return step, nil
}

func buildRoutePrompt(query domain.Query) string {
	imageLine := "The customer did not attach an image."
	if query.HasImage() {
		imageLine = "The customer attached an image with this message."
	}
	return fmt.Sprintf(`You are the customer service router for Deeplearners Fashion, an online clothing store.
Classify the customer's message into exactly one action:
- "answer_faq": questions about returns, shipping, orders, account management, product quality policies, or company information (CEO, location, contact).
- "small_talk": greetings and friendly conversation. Put a warm natural reply in "reply".
- "complaint": the customer reports a damaged or defective item, with or without a photo. Put an apologetic, helpful reply in "reply".
- "delegate_to_ecommerce": the customer explicitly asks for product recommendations, dresses, outfits, style tips, or wants items similar to an attached photo.

%s
Customer message: %q

Respond with only a JSON object: {"action":"answer_faq|small_talk|complaint|delegate_to_ecommerce","reply":"..."}.
"reply" may be empty for answer_faq and delegate_to_ecommerce.`, imageLine, query.Text)
}

func buildRouteRepairPrompt(raw string) string {
	return fmt.Sprintf(`Convert the following text into a valid JSON object for this schema:
{"action":"answer_faq|small_talk|complaint|delegate_to_ecommerce","reply":"..."}
Return only JSON.
Text:
%s`, raw)
}

func buildRephrasePrompt(original, previous string, attempt int) string {
	if attempt == 1 {
		return fmt.Sprintf(`Rephrase the customer question below into a clearer, more formal question suitable for searching a company FAQ document.
Return only the rephrased question as plain text.
Question: %s`, original)
	}
	return fmt.Sprintf(`Earlier searches of the company FAQ with the phrasing %q found no answer.
Rephrase the original question differently, using other likely wording or a related FAQ section (attempt %d).
Return only the rephrased question as plain text.
Original question: %s`, previous, attempt, original)
}

func buildFAQAnswerPrompt(question string, passages []domain.FAQPassage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(p.Text))
	}
	return fmt.Sprintf(`Answer the customer's question using only the company guide excerpts below.
If the excerpts do not contain the answer, respond with exactly %s.

Excerpts:
%s
Question: %s

Answer:`, faqNoAnswerMarker, b.String(), question)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
