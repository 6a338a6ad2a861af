package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-accounts-api/internal/application/session"
	"github.com/go-accounts-api/internal/domain"
)

// SessionHandler handles login.
type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Success: true,
		Message: "login successful",
		User:    toLoginUser(res.Account),
		Token:   res.Token,
	})
}
