package handlers

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/services"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockProjectService struct {
	mock.Mock
}

var _ services.ProjectService = (*mockProjectService)(nil)

func (m *mockProjectService) CreateProject(ctx context.Context, userID *uuid.UUID, input *services.CreateProjectInput) (*models.Project, error) {
	args := m.Called(ctx, userID, input)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) ListProjects(ctx context.Context, userID *uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.GeneratedFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) ListProgress(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.GenerationProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProjectService) GetFile(ctx context.Context, fileID uuid.UUID) (*models.GeneratedFile, error) {
	args := m.Called(ctx, fileID)
	if v := args.Get(0); v != nil {
		return v.(*models.GeneratedFile), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGenerationService struct {
	mock.Mock
}

var _ services.GenerationService = (*mockGenerationService)(nil)

func (m *mockGenerationService) Start(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.(*models.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	return m.Called(ctx, projectID, status).Error(0)
}

func (m *mockGenerationService) ReportProgress(ctx context.Context, projectID uuid.UUID, input *services.ProgressInput) (*models.GenerationProgress, error) {
	args := m.Called(ctx, projectID, input)
	if v := args.Get(0); v != nil {
		return v.(*models.GenerationProgress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) AddFile(ctx context.Context, projectID uuid.UUID, input *services.FileInput) (*models.GeneratedFile, error) {
	args := m.Called(ctx, projectID, input)
	if v := args.Get(0); v != nil {
		return v.(*models.GeneratedFile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) SavePlan(ctx context.Context, projectID uuid.UUID, plan json.RawMessage) error {
	return m.Called(ctx, projectID, plan).Error(0)
}
