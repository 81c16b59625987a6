package handlers

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/codegen-studio/engine/internal/services"
	"github.com/codegen-studio/engine/pkg/utils"
)

type FilesHandler struct {
	svc services.ProjectService
}

func NewFilesHandler(svc services.ProjectService) *FilesHandler {
	return &FilesHandler{svc: svc}
}

// Download serves one generated file as an attachment. Files never change, so
// the content hash is a strong validator for conditional requests.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.GetFile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name := path.Base(strings.ReplaceAll(f.Filename, "\\", "/"))
	w.Header().Set("Content-Type", f.FileType.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("ETag", utils.ETag([]byte(f.Content)))
	http.ServeContent(w, r, name, f.CreatedAt, strings.NewReader(f.Content))
}
