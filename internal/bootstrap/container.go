package bootstrap

import (
	"context"
	"log"

	"docgen-be/internal/config"
	"docgen-be/internal/controller"
	"docgen-be/internal/pkg/logger"
	"docgen-be/internal/pkg/mailer"
	"docgen-be/internal/repository/implementation"
	"docgen-be/internal/repository/unitofwork"
	"docgen-be/internal/service"
	"docgen-be/internal/websocket"
	"docgen-be/pkg/cache"
	"docgen-be/pkg/database"
	"docgen-be/pkg/docgen/compliance"
	"docgen-be/pkg/docgen/generate"
	"docgen-be/pkg/docgen/retrieval"
	"docgen-be/pkg/docgen/review"
	"docgen-be/pkg/docgen/styleprofile"
	"docgen-be/pkg/docgen/workflow"
	"docgen-be/pkg/embedding"
	"docgen-be/pkg/llm/factory"
	pktNats "docgen-be/pkg/nats"
	"docgen-be/pkg/retry"
	"docgen-be/pkg/vector"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const embedTopic = "document_embed"

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController
	ReviewController     controller.IReviewController
	ExportController     controller.IExportController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewGormRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embeddingProvider = embedding.NewStubProvider()
		log.Printf("[INFO] Using Embedding Provider: STUB (deterministic)")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// Vector index. The SQL-backed index filters inside the query; the probe
	// checks the extension is actually installed, otherwise retrieval falls
	// back to the in-memory index, which post-filters and is fed by the
	// embedding consumer.
	chunkRepo := implementation.NewDocumentChunkRepository(db)
	var index vector.Index
	if database.PgvectorAvailable(db) {
		index = vector.NewPooled(vector.NewPgvectorIndex(chunkRepo), cfg.Pipeline.SearchWorkers)
		log.Printf("[INFO] Using Vector Index: PGVECTOR (workers=%d)", cfg.Pipeline.SearchWorkers)
	} else {
		index = vector.NewMemoryIndex()
		log.Printf("[WARN] pgvector unavailable, falling back to in-memory vector index")
	}

	// 3. Generation Pipeline
	docRepo := implementation.NewDocumentRepository(db)
	profileRepo := implementation.NewStyleProfileRepository(db)
	workflowRepo := implementation.NewWorkflowRepository(db)

	retryPolicy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}

	styleCache := cache.NewTTLCache(cfg.Pipeline.StyleCacheTTL, cfg.Pipeline.StyleCacheTTL*2)
	styleBuilder := styleprofile.NewBuilder(docRepo, profileRepo, styleCache, cfg.Pipeline.StyleCacheTTL, sysLogger)
	ranker := retrieval.NewRanker(index, embeddingProvider, sysLogger, cfg.Pipeline.TopKDefault, cfg.Pipeline.SearchKCap)
	drafter := generate.NewDrafter(llmProvider, sysLogger)
	checker := compliance.NewChecker(cfg.Pipeline.ComplianceMinWords)
	editor := review.NewEditor(llmProvider, sysLogger)

	// 4. Services
	publisherService := service.NewPublisherService(embedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		embedTopic,
		uowFactory,
		embeddingProvider,
		index,
		natsPub,
		cfg.Pipeline,
		sysLogger,
	)

	ingestionService := service.NewIngestionService(uowFactory, publisherService, cfg.Pipeline, sysLogger)

	var notifier workflow.Notifier
	if mn := service.NewMailNotifier(emailService, cfg.SMTP.NotifyEmail, sysLogger); mn != nil {
		notifier = mn
	}

	orchestrator := workflow.NewOrchestrator(
		styleBuilder,
		ranker,
		drafter,
		checker,
		editor,
		ingestionService,
		workflowRepo,
		service.NewHubStatusReporter(wsHub),
		service.NewNatsEventSink(natsPub, sysLogger),
		notifier,
		workflow.Config{
			ReviewPolicy:         workflow.ReviewPolicy(cfg.Pipeline.ReviewPolicy),
			RetryPolicy:          retryPolicy,
			Timeout:              cfg.Pipeline.WorkflowTimeout,
			MaxIterations:        cfg.Pipeline.MaxIterations,
			QualityThreshold:     cfg.Pipeline.QualityThreshold,
			TopK:                 cfg.Pipeline.TopKDefault,
			PreferredMinFeedback: cfg.Pipeline.PreferredMinFeedback,
		},
		sysLogger,
	)

	generationService := service.NewGenerationService(orchestrator, uowFactory)
	documentService := service.NewDocumentService(uowFactory, publisherService, index, natsPub, cfg.Pipeline, sysLogger)
	retrievalService := service.NewRetrievalService(ranker, styleBuilder)
	reviewService := service.NewReviewService(editor, checker, styleBuilder)
	exportService := service.NewExportService(retryPolicy, sysLogger)

	// 5. Notification System
	var notifService *service.NotificationService
	if natsSub != nil {
		notifService = service.NewNotificationService(natsSub, wsHub, emailService, cfg.SMTP.NotifyEmail, sysLogger)
		go notifService.Start()
	}

	// 6. Controllers
	return &Container{
		DocumentController:   controller.NewDocumentController(documentService, ingestionService, retrievalService),
		GenerationController: controller.NewGenerationController(generationService, retrievalService, wsHub),
		ReviewController:     controller.NewReviewController(reviewService, documentService),
		ExportController:     controller.NewExportController(exportService, documentService),

		ConsumerService:     consumerService,
		NotificationService: notifService,
		WebSocketHub:        wsHub,
	}
}
