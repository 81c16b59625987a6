package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/codegen-studio/engine/internal/api"
	"github.com/codegen-studio/engine/internal/api/handlers"
	"github.com/codegen-studio/engine/internal/api/validators"
	"github.com/codegen-studio/engine/internal/repository"
	"github.com/codegen-studio/engine/internal/services"
	"github.com/codegen-studio/engine/pkg/config"
	"github.com/codegen-studio/engine/pkg/database"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting Codegen Studio API",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.Options{Verbose: cfg.AppEnv == "development"})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis not reachable, generation jobs will fail to enqueue", zap.Error(err))
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer queueClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	fileRepo := repository.NewFileRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// JWT Secret from environment
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
	}
	jwtSecret := cfg.Secret()

	// Initialize services and handlers
	v := validators.New()
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	projectSvc := services.NewProjectService(projectRepo, fileRepo, progressRepo, queueClient)
	genSvc := services.NewGenerationService(projectRepo, fileRepo, progressRepo)

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": handlers.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
		"redis":    handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	})

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		HMACSecret:      jwtSecret,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		AuthHandler:     handlers.NewAuthHandler(authSvc, v),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, v),
		FilesHandler:    handlers.NewFilesHandler(projectSvc),
		PipelineHandler: handlers.NewPipelineHandler(genSvc, v),
		HealthHandler:   health,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
