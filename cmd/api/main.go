package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/samriddhi-college/chatbot-api/internal/catalog"
	"github.com/samriddhi-college/chatbot-api/internal/config"
	"github.com/samriddhi-college/chatbot-api/internal/database"
	"github.com/samriddhi-college/chatbot-api/internal/handler"
	"github.com/samriddhi-college/chatbot-api/internal/index"
	"github.com/samriddhi-college/chatbot-api/internal/middleware"
	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
	"github.com/samriddhi-college/chatbot-api/internal/router"
	"github.com/samriddhi-college/chatbot-api/internal/service"
	"github.com/samriddhi-college/chatbot-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Student{}, &models.Teacher{}, &models.QueryLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	programs, err := catalog.Load()
	if err != nil {
		log.Fatalf("failed to load program catalog: %v", err)
	}

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create ai generator: %v", err)
	}

	searcher, err := index.NewChromaClient(index.ChromaConfig{
		URL:        cfg.ChromaURL,
		Collection: cfg.ChromaCollection,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create document index client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	directoryRepo := repository.NewDirectoryRepository(db)
	queryLogRepo := repository.NewQueryLogRepository(db)

	directoryService := service.NewDirectoryService(directoryRepo, logger)
	accessPolicy := service.NewAccessPolicy(directoryService, logger)
	retrievalService := service.NewRetrievalService(searcher, logger)
	answerService := service.NewAnswerService(generator, cfg.AITimeout, logger)

	opts := service.QueryServiceOptions{
		Policy:       accessPolicy,
		Directory:    directoryService,
		Repo:         directoryRepo,
		Retrieval:    retrievalService,
		Answers:      answerService,
		Programs:     programs,
		LogRepo:      queryLogRepo,
		Cache:        redisClient,
		CacheTTL:     cfg.AnswerCacheTTL,
		EventSubject: cfg.NATSSubject,
		RetrieveK:    cfg.RetrievalK,
		Logger:       logger,
	}

	if cfg.NATSURL != "" {
		events, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer events.Drain()
		opts.Events = events
	}

	queryService := service.NewQueryService(opts)

	chatHandler := handler.NewChatHandler(queryService, directoryRepo, validate, logger)
	queryLogHandler := handler.NewQueryLogHandler(queryLogRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ChatHandler:     chatHandler,
		QueryLogHandler: queryLogHandler,
		OptionalAuth:    middleware.OptionalAuth(cfg.JWTSecret),
		AdminAuth:       middleware.JWTProtected(cfg.JWTSecret),
		ChatRateLimit:   middleware.RateLimit("chat", cfg.ChatRateLimit, cfg.ChatRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildGenerator(cfg config.Config, logger zerolog.Logger) (ai.Generator, error) {
	switch cfg.AIProvider {
	case "anthropic":
		return ai.NewAnthropicGenerator(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AIModel,
		})
	case "groq":
		baseURL := cfg.AIBaseURL
		if baseURL == "" {
			baseURL = ai.GroqBaseURL
		}
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: baseURL,
			Model:   cfg.AIModel,
			Logger:  logger,
		})
	default:
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Logger:  logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
