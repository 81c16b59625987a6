package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/codegen-studio/engine/internal/models"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
)

const projectsPath = "/api/projects"

// ProjectsKey lists every project.
func ProjectsKey() Key { return Key{projectsPath} }

func ProjectKey(id uuid.UUID) Key { return Key{projectsPath, id.String()} }

func FilesKey(id uuid.UUID) Key { return Key{projectsPath, id.String(), "files"} }

func ProgressKey(id uuid.UUID) Key { return Key{projectsPath, id.String(), "progress"} }

// API is the typed surface of the studio server. Reads go through the cache;
// writes and downloads go straight to the server.
type API struct {
	client Requester
	cache  *Cache
}

func NewAPI(client Requester, cache *Cache) *API {
	return &API{client: client, cache: cache}
}

func (a *API) Cache() *Cache { return a.cache }

func readList[T any](ctx context.Context, c *Cache, key Key) ([]T, State, error) {
	e, err := c.Get(ctx, key)
	if err != nil {
		return nil, StateAbsent, err
	}
	out := []T{}
	if err := e.Decode(&out); err != nil {
		return nil, e.State, err
	}
	return out, e.State, nil
}

func (a *API) ListProjects(ctx context.Context) ([]models.Project, State, error) {
	return readList[models.Project](ctx, a.cache, ProjectsKey())
}

func (a *API) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, State, error) {
	return readList[models.GeneratedFile](ctx, a.cache, FilesKey(projectID))
}

func (a *API) ListProgress(ctx context.Context, projectID uuid.UUID) ([]models.GenerationProgress, State, error) {
	return readList[models.GenerationProgress](ctx, a.cache, ProgressKey(projectID))
}

// GetProject returns nil when the project is absent.
func (a *API) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, State, error) {
	e, err := a.cache.Get(ctx, ProjectKey(projectID))
	if err != nil {
		return nil, StateAbsent, err
	}
	if len(e.Data) == 0 {
		return nil, e.State, nil
	}
	var p models.Project
	if err := e.Decode(&p); err != nil {
		return nil, e.State, err
	}
	return &p, e.State, nil
}

type createProjectBody struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// CreateProject posts a new project. It does not touch the cache.
func (a *API) CreateProject(ctx context.Context, name, prompt string) (*models.Project, error) {
	resp, err := a.client.Request(ctx, http.MethodPost, projectsPath, createProjectBody{Name: name, Prompt: prompt})
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := decodeJSON(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DownloadFile saves one generated file as dir/<base name> and returns the
// written path.
func (a *API) DownloadFile(ctx context.Context, file models.GeneratedFile, dir string) (string, error) {
	name := path.Base(strings.ReplaceAll(file.Filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "", appErr.Newf(appErr.CodeInvalid, "cannot save file named %q", file.Filename)
	}
	return a.download(ctx, fmt.Sprintf("/api/files/%s/download", file.ID), filepath.Join(dir, name))
}

// DownloadProject saves the project archive as dir/project-<id>.zip.
func (a *API) DownloadProject(ctx context.Context, projectID uuid.UUID, dir string) (string, error) {
	dest := filepath.Join(dir, fmt.Sprintf("project-%s.zip", projectID))
	return a.download(ctx, fmt.Sprintf("%s/%s/download", projectsPath, projectID), dest)
}

// download writes to a temp file first so a failed transfer never leaves a
// partial file at dest.
func (a *API) download(ctx context.Context, urlPath, dest string) (string, error) {
	resp, err := a.client.Request(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "create download dir failed")
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "create download file failed")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "download interrupted")
	}
	if err := tmp.Close(); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "write download failed")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "save download failed")
	}
	return dest, nil
}
