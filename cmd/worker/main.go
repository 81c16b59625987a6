package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/codegen-studio/engine/internal/pipeline"
	"github.com/codegen-studio/engine/internal/queue"
	"github.com/codegen-studio/engine/internal/queue/tasks"
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
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	_ = rdb.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
			Queues:      map[string]int{queue.QueueGeneration: 1},
			Logger:      log.Sugar(),
		},
	)

	// Initialize DB and repositories for task handlers
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.Options{})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	genSvc := services.NewGenerationService(
		repository.NewProjectRepository(db),
		repository.NewFileRepository(db),
		repository.NewProgressRepository(db),
	)

	// Without a pipeline endpoint projects are failed as soon as they are picked up.
	var dispatcher pipeline.Dispatcher
	if cfg.PipelineURL != "" {
		dispatcher = pipeline.NewHTTPDispatcher(cfg.PipelineURL, cfg.PublicURL, cfg.Secret())
	} else {
		log.Warn("PIPELINE_URL not set, generation jobs cannot be dispatched")
	}

	handler := tasks.NewGenerateTaskHandler(genSvc, dispatcher)
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeGenerate, handler.HandleGenerate)

	errCh := make(chan error, 1)
	go func() {
		log.Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("worker stopped with error", zap.Error(err))
	}

	// Allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
