package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/media"
	"github.com/tsangpocruise/booking-backend/pkg/validator"
)

// Error codes not carried by a services.ValidationError
const (
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeVersionConflict     = "VERSION_CONFLICT"
	CodeBookingNotConfirmed = "BOOKING_NOT_CONFIRMED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeOTPInvalid          = "OTP_INVALID"
	CodeOTPMaxAttempts      = "OTP_MAX_ATTEMPTS"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodePaymentFailed       = "PAYMENT_VERIFICATION_FAILED"
	CodeMediaUnavailable    = "MEDIA_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// Response is the success envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Success: false, Message: message, Error: message, Code: code})
}

// failBinding reports a request body that could not be bound
func failBinding(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: "Invalid request body",
		Error:   "Invalid request body",
		Code:    services.CodeInvalidRequest,
		Fields:  validator.FieldErrors(err),
	})
}

// tagMessage pairs a failed binding tag with the message shown for it
type tagMessage struct {
	tag     string
	message string
}

// failBindingWith reports a bind failure with the message of the first listed tag that failed.
// Malformed bodies and unlisted tags get fallback.
func failBindingWith(c *gin.Context, err error, fallback string, messages ...tagMessage) {
	fields := validator.FieldErrors(err)
	message := fallback
lookup:
	for _, m := range messages {
		for _, tag := range fields {
			if tag == m.tag {
				message = m.message
				break lookup
			}
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: message,
		Error:   message,
		Code:    services.CodeInvalidRequest,
		Fields:  fields,
	})
}

// respondError maps a service error onto a status and stable code.
// Unknown errors are logged and answered with a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *services.ValidationError
	var rl *services.RateLimitError

	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ve.Code, ve.Message)
	case errors.As(err, &rl):
		seconds := int(time.Until(rl.RetryAfter).Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
		fail(c, http.StatusTooManyRequests, CodeRateLimited, rl.Message)
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, CodeNotFound, "Resource not found")
	case errors.Is(err, services.ErrDefaultStory):
		fail(c, http.StatusForbidden, CodeForbidden, "Cannot delete default stories")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, CodeForbidden, "You are not allowed to modify this resource")
	case errors.Is(err, services.ErrEmailExists):
		fail(c, http.StatusConflict, CodeEmailExists, "User already exists")
	case errors.Is(err, services.ErrVersionConflict):
		fail(c, http.StatusConflict, CodeVersionConflict, "The record was changed by someone else. Reload and try again.")
	case errors.Is(err, services.ErrBookingNotConfirmed):
		fail(c, http.StatusConflict, CodeBookingNotConfirmed, "Receipt is only available for confirmed bookings")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, services.ErrOTPExpired):
		fail(c, http.StatusBadRequest, CodeOTPExpired, "OTP has expired. Please request a new one.")
	case errors.Is(err, services.ErrOTPInvalid):
		fail(c, http.StatusBadRequest, CodeOTPInvalid, "Invalid OTP code")
	case errors.Is(err, services.ErrMaxAttemptsExceeded):
		fail(c, http.StatusTooManyRequests, CodeOTPMaxAttempts, "Maximum OTP attempts exceeded. Please request a new one.")
	case errors.Is(err, services.ErrPaymentVerification):
		fail(c, http.StatusBadRequest, CodePaymentFailed, "Payment verification failed")
	case errors.Is(err, media.ErrNotConfigured):
		fail(c, http.StatusServiceUnavailable, CodeMediaUnavailable, "Image uploads are not available right now")
	default:
		logger.WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString(middleware.RequestIDKey),
		}).WithError(err).Error("Request failed")
		fail(c, http.StatusInternalServerError, CodeInternal, "Something went wrong. Please try again later.")
	}
}

// pathID parses a uuid route parameter, answering 400 when malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, services.CodeInvalidRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads a positive integer query parameter, zero when absent or malformed
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
