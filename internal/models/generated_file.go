package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedFile is one artifact emitted by a pipeline node. Files are never
// modified after creation and disappear only with their project.
type GeneratedFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId" validate:"required"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename  string    `gorm:"not null" json:"filename" validate:"required"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	FileType  FileType  `gorm:"type:varchar(32);not null" json:"fileType" validate:"required"`
	Size      int64     `gorm:"not null" json:"size" validate:"gte=0"`
	NodeType  NodeType  `gorm:"type:varchar(16);not null" json:"nodeType" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}
