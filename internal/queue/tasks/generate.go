package tasks

import (
	"context"
	"fmt"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/pipeline"
	"github.com/codegen-studio/engine/internal/queue"
	"github.com/codegen-studio/engine/internal/services"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// GenerateTaskHandler starts generation runs: it seeds progress and hands the
// project to the external pipeline.
type GenerateTaskHandler struct {
	gen        services.GenerationService
	dispatcher pipeline.Dispatcher
}

// NewGenerateTaskHandler builds the handler. A nil dispatcher fails every
// project it receives.
func NewGenerateTaskHandler(gen services.GenerationService, dispatcher pipeline.Dispatcher) *GenerateTaskHandler {
	return &GenerateTaskHandler{gen: gen, dispatcher: dispatcher}
}

func (h *GenerateTaskHandler) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	id, err := queue.ParseGeneratePayload(t.Payload())
	if err != nil {
		logger.L().Error("invalid generate task payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log := logger.L().With(zap.String("project_id", id.String()))
	log.Info("handling generate task")

	p, err := h.gen.Start(ctx, id)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) || appErr.IsCode(err, appErr.CodeConflict) {
			log.Warn("project cannot start", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Error("start generation failed", zap.Error(err))
		return err
	}

	if h.dispatcher == nil {
		log.Error("no pipeline configured, failing project")
		h.fail(ctx, p)
		return fmt.Errorf("pipeline not configured: %w", asynq.SkipRetry)
	}

	err = h.dispatcher.Dispatch(ctx, &pipeline.Job{ProjectID: p.ID, Name: p.Name, Prompt: p.Prompt})
	if err == nil {
		log.Info("project dispatched to pipeline")
		return nil
	}

	log.Error("pipeline dispatch failed", zap.Error(err))
	if appErr.IsCode(err, appErr.CodeInvalid) {
		h.fail(ctx, p)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if lastAttempt(ctx) {
		h.fail(ctx, p)
	}
	return err
}

func (h *GenerateTaskHandler) fail(ctx context.Context, p *models.Project) {
	if err := h.gen.UpdateStatus(ctx, p.ID, models.ProjectFailed); err != nil {
		logger.L().Error("mark project failed", zap.String("project_id", p.ID.String()), zap.Error(err))
	}
}

// lastAttempt reports whether asynq will not retry the running task again.
func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}
	return retried >= maxRetry
}
