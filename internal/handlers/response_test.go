package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/media"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Code: services.CodeDateFullyBooked, Message: "Selected date is fully booked"}, http.StatusBadRequest, services.CodeDateFullyBooked},
		{"not found", services.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"wrapped not found", fmt.Errorf("loading story: %w", services.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"default story", services.ErrDefaultStory, http.StatusForbidden, CodeForbidden},
		{"email exists", services.ErrEmailExists, http.StatusConflict, CodeEmailExists},
		{"version conflict", services.ErrVersionConflict, http.StatusConflict, CodeVersionConflict},
		{"not confirmed", services.ErrBookingNotConfirmed, http.StatusConflict, CodeBookingNotConfirmed},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{"otp expired", services.ErrOTPExpired, http.StatusBadRequest, CodeOTPExpired},
		{"otp invalid", services.ErrOTPInvalid, http.StatusBadRequest, CodeOTPInvalid},
		{"otp attempts", services.ErrMaxAttemptsExceeded, http.StatusTooManyRequests, CodeOTPMaxAttempts},
		{"payment", services.ErrPaymentVerification, http.StatusBadRequest, CodePaymentFailed},
		{"media", fmt.Errorf("upload: %w", media.ErrNotConfigured), http.StatusServiceUnavailable, CodeMediaUnavailable},
		{"rate limit", &services.RateLimitError{Message: "Too many requests", RetryAfter: time.Now().Add(time.Minute)}, http.StatusTooManyRequests, CodeRateLimited},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, CodeInternal},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			respondError(c, quietLogger(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotContains(t, resp.Message, "pq:")
		})
	}
}

func TestRespondError_RetryAfterHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)

	respondError(c, quietLogger(), &services.RateLimitError{Message: "slow down", RetryAfter: time.Now().Add(20 * time.Second)})

	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		if _, ok := pathID(c, "id"); ok {
			c.Status(http.StatusNoContent)
		}
	})

	assert.Equal(t, http.StatusBadRequest, performRequest(router, http.MethodGet, "/items/42", nil).Code)
	assert.Equal(t, http.StatusNoContent, performRequest(router, http.MethodGet, "/items/6f1c1f7e-4a1b-4f55-9a53-1d2f1c1e5b20", nil).Code)
}
