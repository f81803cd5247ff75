package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

func newTestRouter(generator *fakeGenerator, embedder *fakeEmbedder, faqs *fakeFAQIndex) *Router {
	return NewRouter(generator, embedder, faqs, RouterLimits{SearchAttempts: 4, FAQTopK: 3})
}

func TestRouteSmallTalkNeverDelegates(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{`{"action":"small_talk","reply":"Hello! How can I help?"}`}}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "hello, how are you?"})
	if decision.Kind != domain.RouteSmallTalk {
		t.Fatalf("expected small_talk, got %s", decision.Kind)
	}
	if decision.Answer != "Hello! How can I help?" {
		t.Fatalf("unexpected answer %q", decision.Answer)
	}
}

func TestRouteExplicitProductIntentDelegates(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{`{"action":"delegate_to_ecommerce","reply":""}`}}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "show me red dresses for a wedding"})
	if decision.Kind != domain.RouteDelegate {
		t.Fatalf("expected delegate, got %s", decision.Kind)
	}
	if decision.Answer != "" {
		t.Fatalf("delegate decision should carry no answer, got %q", decision.Answer)
	}
}

func TestRouteComplaintAnswersWithoutDelegating(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{`{"action":"complaint","reply":"I'm so sorry your dress arrived torn."}`}}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "my dress arrived torn!", ImageKey: "img-1"})
	if decision.Kind != domain.RouteComplaint {
		t.Fatalf("expected complaint, got %s", decision.Kind)
	}
	if !strings.Contains(decision.Answer, "sorry") {
		t.Fatalf("expected apologetic answer, got %q", decision.Answer)
	}
}

func TestRouteRepairsInvalidClassifierJSON(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{
		`action: small_talk`,
		`{"action":"small_talk","reply":"Hey there!"}`,
	}}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "hi"})
	if decision.Kind != domain.RouteSmallTalk || decision.Answer != "Hey there!" {
		t.Fatalf("unexpected decision %+v", decision)
	}
	if len(generator.jsonPrompts) != 2 {
		t.Fatalf("expected classify + repair calls, got %d", len(generator.jsonPrompts))
	}
}

func TestRouteUnparseableClassifierTextBecomesPlainAnswer(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{
		`Thanks for asking! We ship worldwide within 5 business days.`,
		`still not json`,
	}}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "do you ship abroad?"})
	if decision.Kind != domain.RouteSmallTalk {
		t.Fatalf("expected plain-text fallback, got %s", decision.Kind)
	}
	if !strings.Contains(decision.Answer, "ship worldwide") {
		t.Fatalf("expected raw model text as answer, got %q", decision.Answer)
	}
}

func TestRouteClassifierFailureYieldsErrorDecision(t *testing.T) {
	generator := &fakeGenerator{jsonErr: errors.New("model unavailable")}
	router := newTestRouter(generator, &fakeEmbedder{}, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "hello"})
	if decision.Kind != domain.RouteError {
		t.Fatalf("expected error decision, got %s", decision.Kind)
	}
}

func TestRouteFAQAnswersFromPassages(t *testing.T) {
	generator := &fakeGenerator{
		jsonResponses: []string{`{"action":"answer_faq"}`},
		textResponses: []string{
			"What is the return policy of Deeplearners Fashion?",
			"Returns are accepted within 30 days of delivery.",
		},
	}
	faqs := &fakeFAQIndex{results: [][]domain.FAQPassage{{
		{Index: 2, Text: "Returns: items can be returned within 30 days.", Score: 0.92},
	}}}
	router := newTestRouter(generator, &fakeEmbedder{}, faqs)

	decision := router.Route(context.Background(), domain.Query{Text: "can I return stuff?"})
	if decision.Kind != domain.RouteFAQ {
		t.Fatalf("expected faq, got %s", decision.Kind)
	}
	if decision.Answer != "Returns are accepted within 30 days of delivery." {
		t.Fatalf("unexpected answer %q", decision.Answer)
	}
	if faqs.searches != 1 {
		t.Fatalf("expected a single search, got %d", faqs.searches)
	}
}

func TestRouteFAQNoAnswerContinuesLoop(t *testing.T) {
	generator := &fakeGenerator{
		jsonResponses: []string{`{"action":"answer_faq"}`},
		textResponses: []string{
			"rephrase one",
			"NO_ANSWER",
			"rephrase two",
			"We offer free shipping over $50.",
		},
	}
	faqs := &fakeFAQIndex{results: [][]domain.FAQPassage{
		{{Index: 0, Text: "Shipping rates vary.", Score: 0.4}},
		{{Index: 1, Text: "Free shipping over $50.", Score: 0.8}},
	}}
	router := newTestRouter(generator, &fakeEmbedder{}, faqs)

	decision := router.Route(context.Background(), domain.Query{Text: "is shipping free?"})
	if decision.Answer != "We offer free shipping over $50." {
		t.Fatalf("unexpected answer %q", decision.Answer)
	}
	if faqs.searches != 2 {
		t.Fatalf("expected 2 searches, got %d", faqs.searches)
	}
}

func TestRouteFAQLoopIsBounded(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{`{"action":"answer_faq"}`}}
	embedder := &fakeEmbedder{}
	faqs := &fakeFAQIndex{}
	router := NewRouter(generator, embedder, faqs, RouterLimits{SearchAttempts: 3, FAQTopK: 3})

	decision := router.Route(context.Background(), domain.Query{Text: "what is the CEO's shoe size?"})
	if faqs.searches != 3 {
		t.Fatalf("expected exactly 3 bounded searches, got %d", faqs.searches)
	}
	if decision.Kind != domain.RouteFAQ || decision.Answer == "" {
		t.Fatalf("exhausted loop must still answer, got %+v", decision)
	}
}

func TestRouteFAQSearchFailureStillAnswers(t *testing.T) {
	generator := &fakeGenerator{jsonResponses: []string{`{"action":"answer_faq"}`}}
	embedder := &fakeEmbedder{queryErr: errors.New("embed down")}
	router := newTestRouter(generator, embedder, &fakeFAQIndex{})

	decision := router.Route(context.Background(), domain.Query{Text: "how do I reset my password?"})
	if decision.Kind != domain.RouteFAQ || decision.Answer == "" {
		t.Fatalf("search failure must degrade to an answer, got %+v", decision)
	}
}
