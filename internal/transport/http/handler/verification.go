package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-accounts-api/internal/application/verification"
	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/pkg/pathcodec"
	"github.com/go-accounts-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

var phoneOutcomeMessages = map[verification.PhoneOutcome]string{
	verification.PhoneVerified:        "phone number verified",
	verification.PhoneAlreadyVerified: "phone number already verified",
	verification.PhoneNoPendingCode:   "no pending code, request a new one",
	verification.PhoneAccountGone:     "account no longer exists",
}

// VerificationHandler handles the email link and phone code endpoints. All
// routes act on the authenticated account.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	res, err := h.svc.RequestVerification(r.Context(), accountID)
	switch {
	case errors.Is(err, domain.ErrAlreadyFullyVerified):
		writeMessage(w, http.StatusCreated, "email and phone already verified")
	case errors.Is(err, domain.ErrDelivery):
		httpErrorWithChannels(w, r, err, res)
	case err != nil:
		httpError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, DispatchEnvelope{Success: true, Message: "verification sent", Channels: res})
	}
}

func httpErrorWithChannels(w http.ResponseWriter, r *http.Request, err error, res *verification.DispatchResult) {
	if res == nil {
		httpError(w, r, err)
		return
	}
	slog.WarnContext(r.Context(), "verification not delivered", "err", err)
	writeJSON(w, http.StatusInternalServerError, DispatchEnvelope{Error: "could not deliver verification", Channels: res})
}

func (h *VerificationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	err := h.svc.ConfirmEmail(r.Context(), accountID, chi.URLParam(r, "token"))
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "email verified")
	case errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "email already verified")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		httpError(w, r, err)
	}
}

func (h *VerificationHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	code, err := pathcodec.Decode(chi.URLParam(r, "otp"))
	if err != nil {
		writeError(w, http.StatusForbidden, "invalid otp")
		return
	}
	out, err := h.svc.ConfirmPhone(r.Context(), accountID, code)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, phoneOutcomeMessages[out])
	case errors.Is(err, domain.ErrOTPExpired):
		writeError(w, http.StatusForbidden, "otp expired")
	case errors.Is(err, domain.ErrOTPInvalid):
		writeError(w, http.StatusForbidden, "invalid otp")
	default:
		httpError(w, r, err)
	}
}
