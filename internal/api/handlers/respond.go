package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/codegen-studio/engine/internal/api/middleware"
	"github.com/codegen-studio/engine/internal/api/types"
	"github.com/codegen-studio/engine/internal/api/validators"
	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

// Validator is the subset of *validator.Validate the handlers use.
type Validator interface {
	Struct(any) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	types.WriteJSON(w, status, v)
}

// writeError answers with the status matching err's code. Internal errors are
// logged and their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := types.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	types.WriteError(w, status, string(appErr.CodeInvalid), msg)
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, v Validator, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			types.WriteError(w, http.StatusRequestEntityTooLarge, string(appErr.CodeInvalid), "request body too large")
		case errors.Is(err, io.EOF):
			writeErrorStr(w, http.StatusBadRequest, "request body is empty")
		default:
			writeErrorStr(w, http.StatusBadRequest, "invalid json")
		}
		return false
	}
	if v != nil {
		if err := v.Struct(dst); err != nil {
			writeErrorStr(w, http.StatusBadRequest, validators.Message(err))
			return false
		}
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
