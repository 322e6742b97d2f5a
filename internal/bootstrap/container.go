package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-canvas-be/internal/config"
	"ai-canvas-be/internal/controller"
	"ai-canvas-be/internal/handler"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/repository/memory"
	"ai-canvas-be/internal/repository/sectionstore"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/internal/service"
	"ai-canvas-be/internal/websocket"
	"ai-canvas-be/pkg/canvas/catalog"
	"ai-canvas-be/pkg/canvas/decision"
	"ai-canvas-be/pkg/canvas/executor"
	canvasMemory "ai-canvas-be/pkg/canvas/memory"
	"ai-canvas-be/pkg/canvas/reply"
	"ai-canvas-be/pkg/canvas/router"
	"ai-canvas-be/pkg/canvas/sectionctx"
	"ai-canvas-be/pkg/canvas/store"
	"ai-canvas-be/pkg/canvas/synthesis"
	"ai-canvas-be/pkg/events"
	"ai-canvas-be/pkg/llm/factory"

	pktNats "ai-canvas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	CanvasController controller.ICanvasController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize In-Memory Conversation State Storage
	stateRepo := memory.NewStateRepository(time.Duration(cfg.Ai.StateTTLMins) * time.Minute)

	// 2.5 Infrastructure (Moved up for dependency injection)
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
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Mirror canvas progress into the audit log from the durable stream
	if natsSub != nil {
		err := natsSub.Subscribe("canvas.>", "canvas-progress-audit", func(ctx context.Context, event events.Event) error {
			wsLogger.Info("nats_audit", "event received", map[string]interface{}{
				"type":    event.EventType(),
				"payload": event.Payload(),
			})
			return nil
		})
		if err != nil {
			sysLogger.Warn("bootstrap", "failed to subscribe to canvas events", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// 3. Dialogue Pipeline
	pipelineLogger := service.InitPipelineLogger()
	cat := catalog.ValueCanvas()

	gormStore := sectionstore.NewGormStore(uowFactory)
	retryStore := store.NewRetryingSectionStore(gormStore, pipelineLogger)

	ctxProvider := sectionctx.NewProvider(cat, retryStore, pipelineLogger)
	rt := router.New(cat, ctxProvider, pipelineLogger)
	replies := reply.New(cat, llmProvider, pipelineLogger)
	decisions := decision.New(llmProvider, pipelineLogger)
	mem := canvasMemory.New(cat, retryStore, pipelineLogger)
	synth := synthesis.New(cat, llmProvider, gormStore, pipelineLogger)
	exec := executor.New(cat, rt, replies, decisions, mem, synth, pipelineLogger)

	// 4. Services
	progressPublisher := service.NewProgressPublisher(cfg.Keys.CanvasTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.CanvasTopic,
		wsHub,
		natsPub,
		wsLogger,
	)

	canvasService := service.NewCanvasService(
		uowFactory,
		cat,
		exec,
		stateRepo,
		retryStore,
		gormStore,
		progressPublisher,
		pipelineLogger,
	)

	sysLogger.Info("bootstrap", "container initialized", map[string]interface{}{
		"sections": cat.Len(),
		"topic":    cfg.Keys.CanvasTopic,
	})

	// 5. Controllers & Handlers
	return &Container{
		CanvasController: controller.NewCanvasController(canvasService),
		ProgressHandler:  handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:     wsHub,
		ConsumerService:  consumerService,
	}
}
