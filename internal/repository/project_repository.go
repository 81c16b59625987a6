package repository

import (
	"context"

	"github.com/codegen-studio/engine/internal/models"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var terminalStatuses = []models.ProjectStatus{models.ProjectCompleted, models.ProjectFailed}

type ProjectRepository interface {
	BaseRepository[models.Project]
	List(ctx context.Context) ([]models.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	// UpdateStatus moves a non-terminal project to status. Terminal projects
	// yield a conflict error.
	UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	SetPlan(ctx context.Context, projectID uuid.UUID, plan datatypes.JSON) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db, "project"), db: db}
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	out := []models.Project{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by user failed")
	}
	return out, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status NOT IN ?", projectID, terminalStatuses).
		Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update project status failed")
	}
	if res.RowsAffected == 0 {
		return r.missOrTerminal(ctx, projectID)
	}
	return nil
}

func (r *projectRepository) SetPlan(ctx context.Context, projectID uuid.UUID, plan datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND status NOT IN ?", projectID, terminalStatuses).
		Update("plan", plan)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "save project plan failed")
	}
	if res.RowsAffected == 0 {
		return r.missOrTerminal(ctx, projectID)
	}
	return nil
}

// missOrTerminal explains why a guarded update touched no rows.
func (r *projectRepository) missOrTerminal(ctx context.Context, projectID uuid.UUID) error {
	var p models.Project
	if err := r.GetByID(ctx, projectID, &p); err != nil {
		return err
	}
	return appErr.Newf(appErr.CodeConflict, "project is %s and can no longer change", p.Status)
}
