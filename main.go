package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petstore/internal/app"
	"petstore/internal/config"
	"petstore/internal/database"
	"petstore/internal/logging"
	"petstore/internal/recommend"
	"petstore/internal/repositories"
	"petstore/internal/services"
	"petstore/pkg/rabbitmq"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// --- Storage ---
	repo, closeStore, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.DatabaseSeed {
		if _, err := app.SeedProducts(ctx, repo, logger); err != nil {
			return err
		}
	}

	deps := app.Dependencies{Products: repo, Logger: logger}

	// --- Product events ---
	var mqClient *rabbitmq.Client
	if cfg.EventsEnabled() {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				logger.Warn("failed to close RabbitMQ client", zap.Error(err))
			}
		}()
		deps.Events = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set, product events disabled")
	}

	// --- Recommendations ---
	if cfg.RecommendationsEnabled() {
		generator, err := recommend.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		deps.Generator = generator
	} else {
		logger.Info("GEMINI_API_KEY not set, recommendations disabled")
	}

	server := app.New(cfg, deps)

	if mqClient != nil {
		monitor := services.NewLowStockMonitor(cfg.LowStockThreshold, logger.Named("stock"))
		err := mqClient.ConsumeProductEvents(func(body []byte) error {
			_, err := monitor.HandleEvent(body)
			return err
		})
		if err != nil {
			logger.Warn("failed to start product event consumer", zap.Error(err))
		}
	}

	// --- HTTP server with graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		listenErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("error during fiber shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

func openRepository(cfg *config.Config, logger *zap.Logger) (repositories.ProductRepository, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		logger.Warn("using in-memory product store, data is lost on exit")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database initialized", zap.String("driver", cfg.DatabaseDriver))

	closeStore := func() {
		logger.Info("closing the connection to the database")
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}
	return repositories.NewGORMProductRepository(db), closeStore, nil
}
