package models

import (
	"time"

	"github.com/google/uuid"
)

// NodeType names a stage of the generation pipeline.
type NodeType string

const (
	NodePlanner   NodeType = "planner"
	NodeArchitect NodeType = "architect"
	NodeCoder     NodeType = "coder"
)

// NodeOrder is the order in which the pipeline runs its nodes.
var NodeOrder = []NodeType{NodePlanner, NodeArchitect, NodeCoder}

// Valid reports whether n is a known pipeline node.
func (n NodeType) Valid() bool {
	switch n {
	case NodePlanner, NodeArchitect, NodeCoder:
		return true
	default:
		return false
	}
}

// Label is the display name of the node.
func (n NodeType) Label() string {
	switch n {
	case NodePlanner:
		return "Planner Node"
	case NodeArchitect:
		return "Architect Node"
	case NodeCoder:
		return "Coder Node"
	default:
		return string(n)
	}
}

// ProjectStatus is the project status a project enters when n starts.
func (n NodeType) ProjectStatus() ProjectStatus {
	switch n {
	case NodePlanner:
		return ProjectPlanning
	case NodeArchitect:
		return ProjectArchitecting
	case NodeCoder:
		return ProjectCoding
	default:
		return ProjectPending
	}
}

// ProgressStatus is the state of one node within a project.
type ProgressStatus string

const (
	ProgressPending    ProgressStatus = "pending"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressFailed     ProgressStatus = "failed"
)

// Valid reports whether s is a known progress status.
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressPending, ProgressInProgress, ProgressCompleted, ProgressFailed:
		return true
	default:
		return false
	}
}

// GenerationProgress is the completion snapshot of one node of one project.
type GenerationProgress struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_progress_project_node" json:"projectId" validate:"required"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	NodeType  NodeType       `gorm:"type:varchar(16);not null;uniqueIndex:idx_progress_project_node" json:"nodeType" validate:"required"`
	Status    ProgressStatus `gorm:"type:varchar(16);not null" json:"status" validate:"required"`
	Progress  int            `gorm:"not null;default:0" json:"progress" validate:"gte=0,lte=100"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TableName keeps the singular table name the pipeline writes to.
func (GenerationProgress) TableName() string {
	return "generation_progress"
}

// ClampProgress bounds a percentage to [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
