package repository

import (
	"context"

	"github.com/codegen-studio/engine/internal/models"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	BaseRepository[models.GeneratedFile]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error)
}

type fileRepository struct {
	BaseRepository[models.GeneratedFile]
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{BaseRepository: NewBaseRepository[models.GeneratedFile](db, "file"), db: db}
}

// ListByProject returns files in emission order.
func (r *fileRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error) {
	out := []models.GeneratedFile{}
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC, filename ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list files failed")
	}
	return out, nil
}
