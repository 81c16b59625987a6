package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProjectStatus is the lifecycle state of a generation run. Only the
// pipeline moves a project between states.
type ProjectStatus string

const (
	ProjectPending      ProjectStatus = "pending"
	ProjectPlanning     ProjectStatus = "planning"
	ProjectArchitecting ProjectStatus = "architecting"
	ProjectCoding       ProjectStatus = "coding"
	ProjectCompleted    ProjectStatus = "completed"
	ProjectFailed       ProjectStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPending, ProjectPlanning, ProjectArchitecting, ProjectCoding, ProjectCompleted, ProjectFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is a final state. Terminal projects never change again.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectCompleted || s == ProjectFailed
}

// Stage orders statuses along the pipeline. Both terminal states share the last stage.
func (s ProjectStatus) Stage() int {
	switch s {
	case ProjectPlanning:
		return 1
	case ProjectArchitecting:
		return 2
	case ProjectCoding:
		return 3
	case ProjectCompleted, ProjectFailed:
		return 4
	default:
		return 0
	}
}

// Project is a single end-to-end generation run keyed by a user prompt.
type Project struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string         `gorm:"not null" json:"name" validate:"required"`
	Prompt    string         `gorm:"type:text;not null" json:"prompt" validate:"required"`
	Status    ProjectStatus  `gorm:"type:varchar(32);not null;default:pending;index" json:"status"`
	Plan      datatypes.JSON `gorm:"type:jsonb" json:"plan,omitempty"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"userId"`
	User      *User          `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ProjectName derives a display name from a prompt: prompts longer than 50
// characters keep their first 47 followed by "...".
func ProjectName(prompt string) string {
	r := []rune(prompt)
	if len(r) > 50 {
		return string(r[:47]) + "..."
	}
	return prompt
}
