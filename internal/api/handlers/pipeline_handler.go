package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/codegen-studio/engine/internal/api/types"
	"github.com/codegen-studio/engine/internal/services"
)

// PipelineHandler receives the callbacks of the external generation pipeline.
type PipelineHandler struct {
	gen      services.GenerationService
	validate Validator
}

func NewPipelineHandler(gen services.GenerationService, v Validator) *PipelineHandler {
	return &PipelineHandler{gen: gen, validate: v}
}

func (h *PipelineHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.StatusUpdateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	if err := h.gen.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PipelineHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.ProgressReportRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	rec, err := h.gen.ReportProgress(r.Context(), id, &services.ProgressInput{
		NodeType: req.NodeType,
		Status:   req.Status,
		Progress: req.Progress,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *PipelineHandler) AddFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.FileCreateRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	f, err := h.gen.AddFile(r.Context(), id, &services.FileInput{
		Filename: req.Filename,
		Content:  req.Content,
		FileType: req.FileType,
		NodeType: req.NodeType,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// Plan stores the plan document as sent; any JSON value is accepted.
func (h *PipelineHandler) Plan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := h.gen.SavePlan(r.Context(), id, json.RawMessage(body)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
