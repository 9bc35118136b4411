package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/time/rate"

	"doc-session-be/internal/config"
	"doc-session-be/internal/controller"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
	"doc-session-be/internal/service"
	"doc-session-be/pkg/chunker"
	"doc-session-be/pkg/embedding"
	"doc-session-be/pkg/extract"
	"doc-session-be/pkg/llm/factory"
	"doc-session-be/pkg/moderation"
	ragmemory "doc-session-be/pkg/rag/memory"
	"doc-session-be/pkg/rag/metrics"
	"doc-session-be/pkg/rag/response"
	"doc-session-be/pkg/rag/search"
	"doc-session-be/pkg/vectorstore"
)

type Container struct {
	// Controllers
	SessionController  controller.ISessionController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	ReaperService   service.IReaperService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Stores
	sessionRepo := memory.NewSessionRepository()
	documentRepo := memory.NewDocumentRepository()
	vectorStore := vectorstore.NewChromemStore()
	memoryStore := ragmemory.NewStore(cfg.Session.MemoryCapacity)
	tracker := metrics.NewTracker()

	// 5. Services
	sessionService := service.NewSessionService(
		sessionRepo, documentRepo, vectorStore, memoryStore, tracker,
		sysLogger, cfg.Session, cfg.Rag, cfg.Ai,
	)
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	documentService := service.NewDocumentService(
		sessionService, documentRepo, publisherService, sysLogger, cfg.Rag.MaxUploadBytes,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		sessionService,
		sessionRepo,
		documentRepo,
		extract.NewExtractor(),
		extract.NewURLFetcher(cfg.Rag.FetchTimeout, cfg.Rag.MaxUploadBytes),
		moderation.NewPatternClassifier(),
		chunker.New(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap, cfg.Rag.MinChunkLength),
		embeddingProvider,
		rate.NewLimiter(rate.Limit(cfg.Rag.EmbedRatePerSecond), 1),
		vectorStore,
		sysLogger,
		cfg.Rag.SummaryCharBudget,
	)

	orchestrator := search.NewOrchestrator(embeddingProvider, vectorStore, sysLogger)
	generator := response.NewGenerator(llmProvider, sysLogger)
	chatService := service.NewChatService(
		sessionService, documentRepo, orchestrator, generator,
		memoryStore, tracker, sysLogger, cfg.Rag,
	)

	reaperService := service.NewReaperService(
		sessionRepo, sessionService, sysLogger, cfg.Session.ReapInterval,
	)

	// 6. Controllers
	return &Container{
		SessionController:  controller.NewSessionController(sessionService),
		DocumentController: controller.NewDocumentController(documentService),
		ChatController:     controller.NewChatController(chatService),
		ConsumerService:    consumerService,
		ReaperService:      reaperService,
		Logger:             sysLogger,
	}
}
