package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates the requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller may not act on the entity
	ErrForbidden = errors.New("forbidden")

	// ErrVersionConflict indicates a stale optimistic version
	ErrVersionConflict = errors.New("version conflict")

	// ErrEmailExists indicates a registration with a taken email
	ErrEmailExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrOTPExpired indicates the reset code has expired
	ErrOTPExpired = errors.New("OTP has expired")

	// ErrOTPInvalid indicates the reset code is wrong or missing
	ErrOTPInvalid = errors.New("invalid OTP code")

	// ErrMaxAttemptsExceeded indicates too many failed reset attempts
	ErrMaxAttemptsExceeded = errors.New("maximum OTP validation attempts exceeded")

	// ErrPaymentVerification indicates a checkout signature mismatch
	ErrPaymentVerification = errors.New("payment verification failed")

	// ErrDefaultStory indicates an attempt to delete a seeded story
	ErrDefaultStory = errors.New("cannot delete default stories")

	// ErrBookingNotConfirmed indicates a receipt was asked for an unpaid booking
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
)

// Validation error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeDateUnavailable = "DATE_UNAVAILABLE"
	CodeDateFullyBooked = "DATE_FULLY_BOOKED"
	CodeInvalidSlot     = "INVALID_SLOT"
	CodeOrderMismatch   = "ORDER_MISMATCH"
)

// ValidationError is a client input problem with a stable code
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// invalid builds an INVALID_REQUEST validation error
func invalid(format string, args ...interface{}) error {
	return &ValidationError{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Key        string
}

func (e *RateLimitError) Error() string {
	return e.Message
}
