package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/utils"
	"github.com/tsangpocruise/booking-backend/pkg/mailer"
	"github.com/tsangpocruise/booking-backend/pkg/validator"
)

const (
	// OTPLength is the length of the reset code
	OTPLength = 6

	// OTPExpiryDuration is how long a reset code is valid
	OTPExpiryDuration = 10 * time.Minute

	// MaxOTPAttempts is the maximum number of reset attempts per code
	MaxOTPAttempts = 3

	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 6
)

// UserStore persists accounts
type UserStore interface {
	CreateUser(fullName, email, passwordHash, contactNumber string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
	UpdateLastLogin(id uuid.UUID) error
	SetResetOTP(id uuid.UUID, otpHash string, expiresAt time.Time) error
	IncrementResetAttempts(id uuid.UUID) (int, error)
	UpdatePassword(id uuid.UUID, passwordHash string) error
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, email, role string) (string, error)
}

// AuthService handles registration, login and password reset
type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	mail       mailer.Sender
	audit      *AuditService
	bcryptCost int
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, tokens TokenIssuer, mail mailer.Sender, audit *AuditService, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		mail:       mail,
		audit:      audit,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// AuthResult is returned on successful register and login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is a sign-up request
type RegisterInput struct {
	FullName        string `json:"fullName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	ContactNumber   string `json:"contactNumber" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Register creates an account and signs a token for it
func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)

	if in.FullName == "" || in.Email == "" || in.ContactNumber == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, invalid("All fields are required")
	}
	if !validator.IsEmail(in.Email) {
		return nil, invalid("Invalid email address")
	}
	if in.Password != in.ConfirmPassword {
		return nil, invalid("Passwords do not match")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, invalid("Password must be at least %d characters", MinPasswordLength)
	}

	existing, err := s.users.GetUserByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(in.FullName, in.Email, string(hash), in.ContactNumber)
	if errors.Is(err, database.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return s.issue(user)
}

// Login checks credentials and signs a token
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Me returns the current state of an account
func (s *AuthService) Me(id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ForgotPassword emails a reset code. Unknown emails are ignored silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Info("Password reset requested for unknown email")
		return nil
	}

	otp, err := utils.GenerateNumericCode(OTPLength)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}
	if err := s.users.SetResetOTP(user.ID, string(hash), s.now().Add(OTPExpiryDuration)); err != nil {
		return err
	}

	msg, err := mailer.RenderPasswordReset(user.Email, mailer.PasswordResetNotice{
		Name:          user.FullName,
		OTP:           otp,
		ExpiryMinutes: int(OTPExpiryDuration / time.Minute),
	})
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to send password reset email")
	}
	return nil
}

// ResetPasswordInput is a reset request
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword validates the code and replaces the password
func (s *AuthService) ResetPassword(actor Actor, in ResetPasswordInput) error {
	if len(in.NewPassword) < MinPasswordLength {
		return invalid("Password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.users.GetUserByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return err
	}
	if user == nil || !user.ResetOTPHash.Valid || !user.ResetOTPExpiresAt.Valid {
		return ErrOTPInvalid
	}
	if s.now().After(user.ResetOTPExpiresAt.Time) {
		return ErrOTPExpired
	}
	if user.ResetOTPAttempts >= MaxOTPAttempts {
		return ErrMaxAttemptsExceeded
	}

	if bcrypt.CompareHashAndPassword([]byte(user.ResetOTPHash.String), []byte(in.OTP)) != nil {
		if _, err := s.users.IncrementResetAttempts(user.ID); err != nil {
			return err
		}
		return ErrOTPInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, string(hash)); err != nil {
		return err
	}

	actor.UserID = user.ID
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditPasswordReset,
		EntityType: "user",
		EntityID:   user.ID.String(),
	})
	return nil
}
