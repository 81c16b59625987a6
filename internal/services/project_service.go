package services

import (
	"context"
	"strings"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/queue"
	"github.com/codegen-studio/engine/internal/repository"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client the services need.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ProjectService is the read side of the studio plus project creation.
type ProjectService interface {
	CreateProject(ctx context.Context, userID *uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID *uuid.UUID) ([]models.Project, error)
	ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error)
	ListProgress(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, error)
	GetFile(ctx context.Context, fileID uuid.UUID) (*models.GeneratedFile, error)
}

type CreateProjectInput struct {
	Name   string
	Prompt string
}

type projectService struct {
	projectRepo  repository.ProjectRepository
	fileRepo     repository.FileRepository
	progressRepo repository.ProgressRepository
	queue        Enqueuer
}

func NewProjectService(projectRepo repository.ProjectRepository, fileRepo repository.FileRepository, progressRepo repository.ProgressRepository, q Enqueuer) ProjectService {
	return &projectService{projectRepo: projectRepo, fileRepo: fileRepo, progressRepo: progressRepo, queue: q}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)

// CreateProject stores a pending project and queues it for generation.
func (s *projectService) CreateProject(ctx context.Context, userID *uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, appErr.New(appErr.CodeInvalid, "prompt is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = models.ProjectName(prompt)
	}
	logger.L().Info("create project called", zap.String("name", name))

	p := &models.Project{
		Name:   name,
		Prompt: prompt,
		Status: models.ProjectPending,
		UserID: userID,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	task, err := queue.NewGenerateTask(p.ID)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "build generate task failed")
	}
	if s.queue == nil {
		logger.L().Warn("task queue not configured, skipping enqueue", zap.String("project_id", p.ID.String()))
	} else if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		logger.L().Error("enqueue generate task failed", zap.Error(err), zap.String("project_id", p.ID.String()))
		_ = s.projectRepo.UpdateStatus(ctx, p.ID, models.ProjectFailed)
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "enqueue generate task failed")
	}

	logger.L().Info("project created", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the caller's projects, or every project for anonymous callers.
func (s *projectService) ListProjects(ctx context.Context, userID *uuid.UUID) ([]models.Project, error) {
	if userID != nil {
		return s.projectRepo.ListByUser(ctx, *userID)
	}
	return s.projectRepo.List(ctx)
}

func (s *projectService) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.fileRepo.ListByProject(ctx, projectID)
}

func (s *projectService) ListProgress(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.progressRepo.ListByProject(ctx, projectID)
}

func (s *projectService) GetFile(ctx context.Context, fileID uuid.UUID) (*models.GeneratedFile, error) {
	var f models.GeneratedFile
	if err := s.fileRepo.GetByID(ctx, fileID, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
