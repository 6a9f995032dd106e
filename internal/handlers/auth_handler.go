package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/services"
)

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// LoginRequest represents the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the reset code request body
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Register handles POST /api/v1/user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBindingWith(c, err, "All fields are required",
			tagMessage{"required", "All fields are required"},
			tagMessage{"email", "Invalid email address"},
		)
		return
	}

	result, err := h.authService.Register(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", result)
}

// Login handles POST /api/v1/user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, services.CodeInvalidRequest, "Email and password are required")
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Login successful", result)
}

// Me handles GET /api/v1/user/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.MustGetUser(c)

	fresh, err := h.authService.Me(user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "", fresh)
}

// ForgotPassword handles POST /api/v1/user/forgot-password.
// The answer is the same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.logger.WithError(err).Error("Forgot password failed")
	}

	respond(c, http.StatusOK, "If an account exists for this email, a reset code has been sent", nil)
}

// ResetPassword handles POST /api/v1/user/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	if err := h.authService.ResetPassword(actorFrom(c), req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Password has been reset successfully", nil)
}
