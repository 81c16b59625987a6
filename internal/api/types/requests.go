package types

import "github.com/codegen-studio/engine/internal/models"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Name   string `json:"name" validate:"max=255"`
	Prompt string `json:"prompt" validate:"required"`
}

type StatusUpdateRequest struct {
	Status models.ProjectStatus `json:"status" validate:"required,oneof=pending planning architecting coding completed failed"`
}

// ProgressReportRequest carries a node report. Progress outside [0,100] is
// clamped rather than rejected.
type ProgressReportRequest struct {
	NodeType models.NodeType       `json:"nodeType" validate:"required,oneof=planner architect coder"`
	Status   models.ProgressStatus `json:"status" validate:"required,oneof=pending in_progress completed failed"`
	Progress int                   `json:"progress"`
}

type FileCreateRequest struct {
	Filename string          `json:"filename" validate:"required,max=512"`
	Content  string          `json:"content"`
	FileType models.FileType `json:"fileType" validate:"omitempty,max=32"`
	NodeType models.NodeType `json:"nodeType" validate:"required,oneof=planner architect coder"`
}
