package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyPrompt is returned by Submit for blank prompts; no request is made.
var ErrEmptyPrompt = errors.New("prompt is required")

// Notice is a short message for the user.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Session is the state of one studio user: the active project and the
// selected file.
type Session struct {
	api    *API
	notify Notifier
	dir    string

	mu           sync.RWMutex
	activeID     uuid.UUID
	hasActive    bool
	selectedFile *models.GeneratedFile
}

// NewSession builds a session saving downloads to dir.
func NewSession(api *API, notify Notifier, dir string) *Session {
	if notify == nil {
		notify = NotifierFunc(func(Notice) {})
	}
	return &Session{api: api, notify: notify, dir: dir}
}

func (s *Session) API() *API { return s.api }

// Submit creates a project from prompt. On success it becomes the active
// project, the selected file is cleared and the project list is refetched.
// On failure session state is left as it was.
func (s *Session) Submit(ctx context.Context, prompt string) (*models.Project, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		s.notify.Notify(Notice{
			Title:       "Please enter a prompt",
			Description: "Describe the application you want to create.",
			Destructive: true,
		})
		return nil, ErrEmptyPrompt
	}

	p, err := s.api.CreateProject(ctx, models.ProjectName(trimmed), trimmed)
	if err != nil {
		logger.L().Warn("create project failed", zap.Error(err))
		s.notify.Notify(Notice{Title: "Error creating project", Description: err.Error(), Destructive: true})
		return nil, err
	}

	s.mu.Lock()
	s.activeID, s.hasActive = p.ID, true
	s.selectedFile = nil
	s.mu.Unlock()

	s.api.Cache().Invalidate(ProjectsKey())
	s.notify.Notify(Notice{Title: "Project created successfully!", Description: "Generation process has started."})
	logger.L().Info("project created", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *Session) ActiveProject() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, s.hasActive
}

// SetActiveProject switches to another project and clears the selection.
func (s *Session) SetActiveProject(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasActive && s.activeID == id {
		return
	}
	s.activeID, s.hasActive = id, true
	s.selectedFile = nil
}

func (s *Session) SelectFile(f *models.GeneratedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFile = f
}

func (s *Session) SelectedFile() *models.GeneratedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFile
}

// DownloadFile saves f into the download dir and reports the outcome.
func (s *Session) DownloadFile(ctx context.Context, f models.GeneratedFile) (string, error) {
	dest, err := s.api.DownloadFile(ctx, f, s.dir)
	if err != nil {
		logger.L().Warn("download file failed", zap.String("file_id", f.ID.String()), zap.Error(err))
		s.notify.Notify(Notice{Title: "Download failed", Description: "Failed to download file", Destructive: true})
		return "", err
	}
	s.notify.Notify(Notice{Title: "Download complete", Description: dest})
	return dest, nil
}

// DownloadProject saves the active project archive. Without an active
// project it does nothing.
func (s *Session) DownloadProject(ctx context.Context) (string, error) {
	id, ok := s.ActiveProject()
	if !ok {
		return "", nil
	}
	dest, err := s.api.DownloadProject(ctx, id, s.dir)
	if err != nil {
		logger.L().Warn("download project failed", zap.String("project_id", id.String()), zap.Error(err))
		s.notify.Notify(Notice{Title: "Download failed", Description: "Failed to download project files", Destructive: true})
		return "", err
	}
	s.notify.Notify(Notice{Title: "Download complete", Description: "Project files downloaded as ZIP"})
	return dest, nil
}
