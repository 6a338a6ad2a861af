package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")

	// ErrDelivery marks a failure of an outbound mail or SMS transport.
	// It is distinct from logic errors so callers can decide whether it is fatal.
	ErrDelivery = errors.New("delivery failed")
)

// Verification state errors.
var (
	ErrAlreadyVerified      = errors.New("already verified")
	ErrAlreadyFullyVerified = errors.New("email and phone already verified")
)

// OTP redemption outcomes. Invalid and expired codes are also forbidden.
var (
	ErrOTPNotFound = errors.New("no pending otp")
	ErrOTPExpired  = fmt.Errorf("otp expired: %w", ErrForbidden)
	ErrOTPInvalid  = fmt.Errorf("invalid otp: %w", ErrForbidden)
)
