package handlers

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/codegen-studio/engine/internal/api/middleware"
	"github.com/codegen-studio/engine/internal/api/types"
	"github.com/codegen-studio/engine/internal/services"
)

type ProjectsHandler struct {
	svc      services.ProjectService
	validate Validator
}

func NewProjectsHandler(svc services.ProjectService, v Validator) *ProjectsHandler {
	return &ProjectsHandler{svc: svc, validate: v}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListProjects(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectCreateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	p, err := h.svc.CreateProject(r.Context(), middleware.GetUserID(r.Context()), &services.CreateProjectInput{
		Name:   req.Name,
		Prompt: req.Prompt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Files(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	files, err := h.svc.ListFiles(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *ProjectsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	records, err := h.svc.ListProgress(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Download streams a zip archive of every file of the project.
func (h *ProjectsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := services.WriteArchive(r.Context(), h.svc, id, &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": services.ArchiveName(id)}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
