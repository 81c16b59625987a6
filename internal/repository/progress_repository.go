package repository

import (
	"context"
	"errors"

	"github.com/codegen-studio/engine/internal/models"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const nodeOrderSQL = "CASE node_type WHEN 'planner' THEN 0 WHEN 'architect' THEN 1 WHEN 'coder' THEN 2 ELSE 3 END"

type ProgressRepository interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, error)
	// Seed creates a pending record for every pipeline node, leaving existing
	// records alone.
	Seed(ctx context.Context, projectID uuid.UUID) error
	// Upsert records a node report. Progress never moves backwards: a lower
	// value keeps the stored one while the status is still applied.
	Upsert(ctx context.Context, rec *models.GenerationProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, error) {
	out := []models.GenerationProgress{}
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order(nodeOrderSQL).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list progress failed")
	}
	return out, nil
}

func (r *progressRepository) Seed(ctx context.Context, projectID uuid.UUID) error {
	recs := make([]models.GenerationProgress, 0, len(models.NodeOrder))
	for _, n := range models.NodeOrder {
		recs = append(recs, models.GenerationProgress{ProjectID: projectID, NodeType: n, Status: models.ProgressPending})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "project_id"}, {Name: "node_type"}}, DoNothing: true}).
		Create(&recs).Error
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "seed progress failed")
	}
	return nil
}

func (r *progressRepository) Upsert(ctx context.Context, rec *models.GenerationProgress) error {
	rec.Progress = models.ClampProgress(rec.Progress)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.GenerationProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ? AND node_type = ?", rec.ProjectID, rec.NodeType).
			First(&cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(rec).Error
		}
		if err != nil {
			return err
		}
		if cur.Progress > rec.Progress {
			rec.Progress = cur.Progress
		}
		rec.ID = cur.ID
		return tx.Model(&cur).Updates(map[string]any{"status": rec.Status, "progress": rec.Progress}).Error
	})
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "upsert progress failed")
	}
	return nil
}
