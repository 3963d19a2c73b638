package bootstrap

import (
	"log"
	"time"

	"circuitech-be/internal/config"
	"circuitech-be/internal/controller"
	"circuitech-be/internal/pkg/logger"
	"circuitech-be/internal/pkg/ratelimit"
	"circuitech-be/internal/repository/implementation"
	"circuitech-be/internal/service"
	"circuitech-be/pkg/agent"
	"circuitech-be/pkg/llm/factory"
	"circuitech-be/pkg/parts"
	"circuitech-be/pkg/parts/digikey"
	"circuitech-be/pkg/parts/nexar"

	pktNats "circuitech-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	PinmapController controller.IPinmapController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure handles kept for shutdown
	NatsPublisher *pktNats.Publisher
	SysLogger     logger.ILogger
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

	// Initialize LLM Provider based on Config
	llmBaseURL := cfg.Ai.GroqBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize Parts Search Provider based on Config
	var searchProvider parts.SearchProvider
	if cfg.Parts.Provider == "nexar" {
		searchProvider = nexar.NewClient(cfg.Keys.Nexar, cfg.Parts.NexarBaseURL)
		log.Printf("[INFO] Using Parts Provider: NEXAR")
	} else {
		searchProvider = digikey.NewClient(
			cfg.Keys.DigikeyClientID,
			cfg.Keys.DigikeyClientSecret,
			cfg.Parts.DigikeyBaseURL,
		)
		log.Printf("[INFO] Using Parts Provider: DIGIKEY")
	}

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Repositories
	sessionRepo := implementation.NewDesignSessionRepository(db)
	auditLogRepo := implementation.NewAuditLogRepository(db)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.AuditTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.AuditTopic,
		auditLogRepo,
	)

	orchestrator := agent.NewOrchestrator(llmProvider, searchProvider, sysLogger)
	pinmapAgent := agent.NewPinmapAgent(llmProvider)

	chatService := service.NewChatService(
		orchestrator,
		sessionRepo,
		publisherService,
		natsPub,
		sysLogger,
	)
	pinmapService := service.NewPinmapService(
		pinmapAgent,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 5. Rate limiters, one per route group, independent buckets
	chatLimiter := ratelimit.NewLimiter(cfg.RateLimit.ChatPerMinute, time.Minute)
	pinmapLimiter := ratelimit.NewLimiter(cfg.RateLimit.PinmapPerMinute, time.Minute)

	return &Container{
		ChatController:   controller.NewChatController(chatService, chatLimiter.Middleware()),
		PinmapController: controller.NewPinmapController(pinmapService, pinmapLimiter.Middleware()),

		ConsumerService: consumerService,

		NatsPublisher: natsPub,
		SysLogger:     sysLogger,
	}
}
