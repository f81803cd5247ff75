package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeplearners/fashion-assistant/internal/config"
	"github.com/deeplearners/fashion-assistant/internal/core/domain"
	"github.com/deeplearners/fashion-assistant/internal/core/ports"
	"github.com/deeplearners/fashion-assistant/internal/core/usecase"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/catalog"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/chunking"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/corpus"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/llm/ollama"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/queue/nats"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/repository/postgres"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/resilience"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/storage/localfs"
	"github.com/deeplearners/fashion-assistant/internal/infrastructure/vector/qdrant"
	"github.com/deeplearners/fashion-assistant/internal/observability/logging"
	"github.com/deeplearners/fashion-assistant/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue   ports.MessageQueue
	Storage ports.ObjectStorage

	ChatUC    *usecase.ChatUseCase
	IngestUC  ports.CatalogIngestor
	JobsUC    ports.CatalogReader
	ProcessUC ports.CatalogProcessor
	Jobs      ports.CatalogRepository

	APIMetrics    *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := appLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobs := postgres.NewCatalogRepository(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	sessions := postgres.NewSessionRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		cfg.OllamaVisionModel,
		cfg.OllamaEmbedModel,
		ollama.Options{ResilienceExecutor: executor},
	)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)
	vision := ollama.NewVision(ollamaClient)

	productIndex := qdrant.NewProductIndexWithOptions(cfg.QdrantURL, cfg.QdrantProductCollection, qdrant.Options{
		ResilienceExecutor: executor,
	})
	faqIndex := qdrant.NewFAQIndexWithOptions(cfg.QdrantURL, cfg.QdrantFAQCollection, qdrant.Options{
		ResilienceExecutor: executor,
	})

	apiMetrics := metrics.NewHTTPServerMetrics(service)
	workerMetrics := metrics.NewWorkerMetrics(service)

	router := usecase.NewRouter(generator, embedder, faqIndex, usecase.RouterLimits{
		SearchAttempts: cfg.RouterSearchAttempts,
		FAQTopK:        cfg.RouterFAQTopK,
		LLMTimeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		SearchTimeout:  time.Duration(cfg.SearchTimeoutSeconds) * time.Second,
	})
	router.SetHooks(usecase.RouterHooks{
		Decision: func(kind domain.RouteKind) {
			apiMetrics.RecordRouterDecision(service, string(kind))
		},
		FAQSearches: func(count int) {
			apiMetrics.RecordFAQSearchAttempts(service, count)
		},
	})

	stages := usecase.NewSearchStages(generator, vision, embedder, productIndex, storage, usecase.StageLimits{
		LLMTimeout:    time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		VisionTimeout: time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
		SearchTimeout: time.Duration(cfg.SearchTimeoutSeconds) * time.Second,
		TopK:          cfg.SearchTopK,
		WeightImage:   cfg.WeightImage,
	})
	pipeline := usecase.NewPipeline(func(stage string, elapsed time.Duration) {
		apiMetrics.RecordPipelineStage(service, stage, elapsed)
	}, stages...)

	chatUC := usecase.NewChatUseCase(router, pipeline, sessions)

	splitter := chunking.NewSplitter(cfg.FAQPassageSize, cfg.FAQPassageOverlap)
	explanations, err := catalog.LoadCategoryExplanations(cfg.CategoryExplanationPath)
	if err != nil {
		logger.Warn("category explanations load failed, using builtins", "error", err)
		explanations, _ = catalog.LoadCategoryExplanations("")
	}
	parser := catalog.NewParser(storage, explanations)

	ingestUC := usecase.NewIngestCatalogUseCase(jobs, storage, queue)
	processUC := usecase.NewProcessCatalogUseCase(jobs, parser, embedder, productIndex, cfg.EmbedBatchSize)

	// The chatbot keeps serving when its knowledge base cannot be loaded;
	// every turn then reports the setup problem instead of answering.
	if err := loadFAQCorpus(ctx, cfg, splitter, embedder, faqIndex, logger); err != nil {
		logger.Error("faq corpus bootstrap failed", "error", err)
		chatUC.MarkInitFailed(domain.WrapError(domain.ErrCollaboratorInit, "bootstrap.faq_corpus", err))
	}

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:   queue,
		Storage: storage,

		ChatUC:    chatUC,
		IngestUC:  ingestUC,
		JobsUC:    ingestUC,
		ProcessUC: processUC,
		Jobs:      jobs,

		APIMetrics:    apiMetrics,
		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func loadFAQCorpus(
	ctx context.Context,
	cfg config.Config,
	splitter ports.PassageSplitter,
	embedder ports.Embedder,
	faqIndex ports.FAQIndex,
	logger *slog.Logger,
) error {
	text, err := corpus.NewLoader().Load(cfg.FAQCorpusPath)
	if err != nil {
		return fmt.Errorf("load faq corpus %s: %w", cfg.FAQCorpusPath, err)
	}

	bootstrapUC := usecase.NewFAQBootstrapUseCase(splitter, embedder, faqIndex, cfg.EmbedBatchSize)
	count, err := bootstrapUC.IndexCorpus(ctx, text)
	if err != nil {
		return fmt.Errorf("index faq corpus: %w", err)
	}

	logger.Info("faq corpus indexed", "passages", count, "path", cfg.FAQCorpusPath)
	return nil
}

// InstrumentedChat decorates the chat service with per-turn metrics.
func (a *App) InstrumentedChat(service string) ports.ChatService {
	return &instrumentedChat{
		inner:   a.ChatUC,
		metrics: a.APIMetrics,
		service: service,
	}
}

type instrumentedChat struct {
	inner   ports.ChatService
	metrics *metrics.HTTPServerMetrics
	service string
}

func (c *instrumentedChat) Chat(ctx context.Context, sessionID string, query domain.Query, topK int) (*domain.ChatResult, error) {
	result, err := c.inner.Chat(ctx, sessionID, query, topK)
	if err != nil || result == nil {
		return result, err
	}

	c.metrics.RecordChatTurn(c.service, string(result.Source))
	if result.Source == domain.SourceEcommerce {
		c.metrics.RecordProductResults(c.service, len(result.Products))
	}
	return result, err
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func appLogger(service, level string) *slog.Logger {
	logger := logging.NewJSONLogger(service, level)
	slog.SetDefault(logger)
	return logger
}
