package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-accounts-api/internal/application/verification"
	"github.com/go-accounts-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountEnvelope wraps register and update responses.
type AccountEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	User    *domain.Account `json:"user"`
}

// LoginEnvelope wraps login responses.
type LoginEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	User    *LoginUser `json:"user"`
	Token   string     `json:"token"`
}

// LoginUser is the reduced account view returned at login.
type LoginUser struct {
	AccountID       string `json:"_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	IsMailVerified  bool   `json:"isMailVerified"`
	IsPhoneVerified bool   `json:"isPhoneVerified"`
}

// DispatchEnvelope reports what a verification request sent.
type DispatchEnvelope struct {
	Success  bool                         `json:"success"`
	Message  string                       `json:"message,omitempty"`
	Error    string                       `json:"error,omitempty"`
	Channels *verification.DispatchResult `json:"channels,omitempty"`
}

func toLoginUser(a *domain.Account) *LoginUser {
	return &LoginUser{
		AccountID:       a.AccountID,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		Address:         a.Address,
		IsMailVerified:  a.EmailVerified,
		IsPhoneVerified: a.PhoneVerified,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: true, Message: msg})
}
