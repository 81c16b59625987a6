package handlers

import (
	"net/http"

	"github.com/codegen-studio/engine/internal/api/types"
	"github.com/codegen-studio/engine/internal/services"
)

type AuthHandler struct {
	svc      services.AuthService
	validate Validator
}

func NewAuthHandler(svc services.AuthService, v Validator) *AuthHandler {
	return &AuthHandler{svc: svc, validate: v}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(services.TokenTTL.Seconds()),
		User:        u,
	})
}
