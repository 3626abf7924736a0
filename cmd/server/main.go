package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rongwang/fintrack-server/internal/api"
	"github.com/rongwang/fintrack-server/internal/auth"
	"github.com/rongwang/fintrack-server/internal/config"
	"github.com/rongwang/fintrack-server/internal/events"
	"github.com/rongwang/fintrack-server/internal/repository"
	"github.com/rongwang/fintrack-server/internal/service"
	"github.com/rongwang/fintrack-server/internal/utils"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(utils.LoggerConfig{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "server",
	})
	utils.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create repository
	var repo repository.Repository
	switch cfg.Database.Backend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repo = repository.NewMemoryRepository()
	default:
		db, err := config.SetupDatabase(ctx, cfg)
		if err != nil {
			logger.Error("Failed to set up database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = repository.NewPostgresRepository(db)
	}

	// Ledger events are optional
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, continuing without ledger events", "error", err)
		} else {
			publisher = amqpPublisher
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQP.Exchange)
		}
	} else {
		logger.Info("AMQP disabled - ledger events will not be published")
	}
	defer publisher.Close()

	// Create service
	svc := service.NewDefaultService(service.Deps{
		Repo:      repo,
		Tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL),
		Hasher:    auth.NewPasswordHasher(auth.DefaultArgon2Params()),
		Publisher: publisher,
		Logger:    logger,
	})

	// Set up Gin router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger.WithComponent("http")), api.CORS(cfg.Server.CORSAllowedOrigins))

	// Set up routes
	handler := api.NewHandler(svc, logger)
	handler.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "addr", server.Addr, "backend", cfg.Database.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
