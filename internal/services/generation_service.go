package services

import (
	"context"
	"encoding/json"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/repository"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// GenerationService records what the external pipeline reports. It is the
// only writer of project status, progress and generated files.
type GenerationService interface {
	// Start seeds per-node progress and moves the project to planning.
	Start(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	ReportProgress(ctx context.Context, projectID uuid.UUID, input *ProgressInput) (*models.GenerationProgress, error)
	AddFile(ctx context.Context, projectID uuid.UUID, input *FileInput) (*models.GeneratedFile, error)
	SavePlan(ctx context.Context, projectID uuid.UUID, plan json.RawMessage) error
}

type ProgressInput struct {
	NodeType models.NodeType
	Status   models.ProgressStatus
	Progress int
}

type FileInput struct {
	Filename string
	Content  string
	FileType models.FileType
	NodeType models.NodeType
}

type generationService struct {
	projectRepo  repository.ProjectRepository
	fileRepo     repository.FileRepository
	progressRepo repository.ProgressRepository
}

func NewGenerationService(projectRepo repository.ProjectRepository, fileRepo repository.FileRepository, progressRepo repository.ProgressRepository) GenerationService {
	return &generationService{projectRepo: projectRepo, fileRepo: fileRepo, progressRepo: progressRepo}
}

var _ GenerationService = (*generationService)(nil)

func (s *generationService) Start(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.Seed(ctx, projectID); err != nil {
		return nil, err
	}
	if p.Status == models.ProjectPending {
		if err := s.projectRepo.UpdateStatus(ctx, projectID, models.ProjectPlanning); err != nil {
			return nil, err
		}
		p.Status = models.ProjectPlanning
	}
	logger.L().Info("generation started", zap.String("project_id", projectID.String()))
	return p, nil
}

func (s *generationService) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	if !status.Valid() {
		return appErr.Newf(appErr.CodeInvalid, "unknown project status %q", status)
	}
	logger.L().Info("update project status", zap.String("project_id", projectID.String()), zap.String("status", string(status)))
	return s.projectRepo.UpdateStatus(ctx, projectID, status)
}

// ReportProgress stores a node report. A node that starts working moves the
// project forward into the matching stage; a failed node fails the project.
func (s *generationService) ReportProgress(ctx context.Context, projectID uuid.UUID, input *ProgressInput) (*models.GenerationProgress, error) {
	if !input.NodeType.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown node %q", input.NodeType)
	}
	if !input.Status.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown progress status %q", input.Status)
	}
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rec := &models.GenerationProgress{
		ProjectID: projectID,
		NodeType:  input.NodeType,
		Status:    input.Status,
		Progress:  models.ClampProgress(input.Progress),
	}
	if rec.Status == models.ProgressCompleted {
		rec.Progress = 100
	}
	if err := s.progressRepo.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	switch rec.Status {
	case models.ProgressInProgress:
		stage := input.NodeType.ProjectStatus()
		if stage.Stage() > p.Status.Stage() {
			if err := s.projectRepo.UpdateStatus(ctx, projectID, stage); err != nil {
				return nil, err
			}
		}
	case models.ProgressFailed:
		if err := s.projectRepo.UpdateStatus(ctx, projectID, models.ProjectFailed); err != nil {
			return nil, err
		}
	}

	logger.L().Debug("progress recorded",
		zap.String("project_id", projectID.String()),
		zap.String("node", string(rec.NodeType)),
		zap.String("status", string(rec.Status)),
		zap.Int("progress", rec.Progress),
	)
	return rec, nil
}

func (s *generationService) AddFile(ctx context.Context, projectID uuid.UUID, input *FileInput) (*models.GeneratedFile, error) {
	if input.Filename == "" {
		return nil, appErr.New(appErr.CodeInvalid, "filename is required")
	}
	if !input.NodeType.Valid() {
		return nil, appErr.Newf(appErr.CodeInvalid, "unknown node %q", input.NodeType)
	}
	if _, err := s.activeProject(ctx, projectID); err != nil {
		return nil, err
	}

	ft := input.FileType
	if ft == "" {
		ft = models.DetectFileType(input.Filename)
	}
	f := &models.GeneratedFile{
		ProjectID: projectID,
		Filename:  input.Filename,
		Content:   input.Content,
		FileType:  ft,
		Size:      int64(len(input.Content)),
		NodeType:  input.NodeType,
	}
	if err := s.fileRepo.Create(ctx, f); err != nil {
		return nil, err
	}
	logger.L().Info("file generated",
		zap.String("project_id", projectID.String()),
		zap.String("filename", f.Filename),
		zap.Int64("size", f.Size),
	)
	return f, nil
}

func (s *generationService) SavePlan(ctx context.Context, projectID uuid.UUID, plan json.RawMessage) error {
	if !json.Valid(plan) {
		return appErr.New(appErr.CodeInvalid, "plan must be valid json")
	}
	return s.projectRepo.SetPlan(ctx, projectID, datatypes.JSON(plan))
}

// activeProject loads a project that may still change.
func (s *generationService) activeProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, appErr.Newf(appErr.CodeConflict, "project is %s and can no longer change", p.Status)
	}
	return &p, nil
}
