package bootstrap

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"ai-mailassist-be/internal/config"
	"ai-mailassist-be/internal/controller"
	"ai-mailassist-be/internal/pkg/logger"
	"ai-mailassist-be/internal/repository/implementation"
	"ai-mailassist-be/internal/repository/memory"
	"ai-mailassist-be/internal/service"
	"ai-mailassist-be/pkg/embedding"
	"ai-mailassist-be/pkg/fetchcache"
	"ai-mailassist-be/pkg/llm/factory"
	"ai-mailassist-be/pkg/oauth"
	"ai-mailassist-be/pkg/rag/grader"
	ragmemory "ai-mailassist-be/pkg/rag/memory"
	"ai-mailassist-be/pkg/rag/pipeline"
	"ai-mailassist-be/pkg/rag/retriever"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	GmailAuthController controller.IGmailAuthController
	EmailController     controller.IEmailController
	DocumentController  controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		sysLogger.Info("Bootstrap", "Using embedding provider: ollama", map[string]interface{}{"model": cfg.Ai.OllamaModel})
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Google.GeminiAPIKey)
		sysLogger.Info("Bootstrap", "Using embedding provider: gemini", nil)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Google.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("Bootstrap", "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// 4. Infrastructure
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}

	sessionRepo := memory.NewSessionRepository()
	embeddingRepo := implementation.NewDocumentEmbeddingRepository(db)
	emailCache := fetchcache.New(time.Duration(cfg.Cache.EmailTTLSeconds) * time.Second)

	oauthMgr, err := oauth.NewManager(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)
	if err != nil {
		// Services receive the nil manager and answer with a configuration
		// error; chat and upload keep working without Gmail.
		sysLogger.Warn("Bootstrap", "Gmail OAuth not configured", map[string]interface{}{"error": err.Error()})
	}

	// 5. RAG Pipeline
	pipelineLogger := newPipelineLogger(cfg.App.Environment)
	conversations := ragmemory.NewConversationStore(rdb)
	docRetriever := retriever.NewVectorRetriever(embeddingRepo, embeddingProvider)
	docFilter := grader.NewGrader(llmProvider, pipelineLogger)
	engine := pipeline.NewEngine(docRetriever, docFilter, conversations, llmProvider, pipelineLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Ai.UploadTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Ai.UploadTopic, embeddingRepo, embeddingProvider, sysLogger)
	chatService := service.NewChatService(engine, conversations)
	authService := service.NewGmailAuthService(sessionRepo, oauthMgr)
	emailService := service.NewEmailService(
		sessionRepo,
		oauthMgr,
		emailCache,
		time.Duration(cfg.Cache.EmailTTLSeconds)*time.Second,
		"", // real Gmail endpoint
	)
	documentService := service.NewDocumentService(publisherService, embeddingRepo)

	return &Container{
		ChatController:      controller.NewChatController(chatService),
		GmailAuthController: controller.NewGmailAuthController(authService, cfg.App.ClientURL),
		EmailController:     controller.NewEmailController(emailService),
		DocumentController:  controller.NewDocumentController(documentService),
		ConsumerService:     consumerService,
		Logger:              sysLogger,
	}
}

// newPipelineLogger keeps the chatty per-stage trace out of production
// stdout; in development it goes to stderr with a recognizable prefix.
func newPipelineLogger(environment string) *log.Logger {
	if environment == "production" {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[RAG] ", log.LstdFlags)
}
