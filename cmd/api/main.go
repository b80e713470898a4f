package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/pantrypal/backend/config"
	"github.com/pageza/pantrypal/backend/internal/api"
	"github.com/pageza/pantrypal/backend/internal/history"
	"github.com/pageza/pantrypal/backend/internal/logging"
	"github.com/pageza/pantrypal/backend/internal/router"
	"github.com/pageza/pantrypal/backend/internal/service"
	"github.com/pageza/pantrypal/backend/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.App.LogLevel, cfg.App.Debug)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.History.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.History.RedisAddr,
			Password: cfg.History.RedisPassword,
			DB:       cfg.History.RedisDB,
		})
	}

	store, err := buildStore(ctx, cfg, redisClient, logger)
	if err != nil {
		logger.Fatal("failed to initialize history store", zap.Error(err))
	}
	logger.Info("history store ready", zap.String("backend", cfg.History.Backend))

	// Missing credentials disable the dependent feature with a one-time
	// warning instead of failing later calls.
	var aiService service.AIService
	if llm, err := service.NewLLMService(cfg.AI, logger); err != nil {
		logger.Warn("AI key missing, recipe generation disabled", zap.Error(err))
	} else {
		aiService = llm
	}

	var imageService service.ImageService
	if cfg.Images.AccessKey == "" {
		logger.Warn("Unsplash key missing, hero images disabled")
	} else {
		imageService = service.NewUnsplashService(cfg.Images, redisClient, logger)
	}

	wf := workflow.New(aiService, imageService, store, logger)
	handler := api.NewRecipeHandler(wf, store, logger)
	engine := router.SetupRouter(handler, logger, cfg.App.Debug)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildStore selects the configured history backend.
func buildStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (history.Store, error) {
	switch cfg.History.Backend {
	case "redis":
		return history.NewRedisStore(ctx, redisClient, logger)
	case "db":
		db, err := openDatabase(cfg.History.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return history.NewGormStore(db, logger)
	default:
		return history.NewFileStore(cfg.History.FilePath, logger)
	}
}

func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
