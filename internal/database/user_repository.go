package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

// ErrDuplicateEmail is returned when an email is already registered
var ErrDuplicateEmail = errors.New("email already registered")

const userColumns = `
	id, full_name, email, password_hash, contact_number, role,
	reset_otp_hash, reset_otp_expires_at, reset_otp_attempts,
	last_login_at, created_at, updated_at
`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser inserts a new account with the USER role
func (r *UserRepository) CreateUser(fullName, email, passwordHash, contactNumber string) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		ID:            uuid.New(),
		FullName:      fullName,
		Email:         strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:  passwordHash,
		ContactNumber: contactNumber,
		Role:          models.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `
		INSERT INTO users (
			id, full_name, email, password_hash, contact_number, role,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.ContactNumber,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.Get(&user, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// UpdateLastLogin stamps the user's last successful login
func (r *UserRepository) UpdateLastLogin(id uuid.UUID) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// SetResetOTP stores a hashed reset code and clears previous attempts
func (r *UserRepository) SetResetOTP(id uuid.UUID, otpHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_otp_hash = $1,
		    reset_otp_expires_at = $2,
		    reset_otp_attempts = 0,
		    updated_at = NOW()
		WHERE id = $3
	`

	_, err := r.db.Exec(query, otpHash, expiresAt, id)
	if err != nil {
		return fmt.Errorf("failed to set reset otp: %w", err)
	}

	return nil
}

// IncrementResetAttempts records a failed reset attempt and returns the new count
func (r *UserRepository) IncrementResetAttempts(id uuid.UUID) (int, error) {
	query := `
		UPDATE users
		SET reset_otp_attempts = reset_otp_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING reset_otp_attempts
	`

	var attempts int
	if err := r.db.QueryRow(query, id).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("failed to increment reset attempts: %w", err)
	}

	return attempts, nil
}

// UpdatePassword replaces the password hash and clears any reset code
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    reset_otp_hash = NULL,
		    reset_otp_expires_at = NULL,
		    reset_otp_attempts = 0,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// SetRole changes a user's role, identified by email
func (r *UserRepository) SetRole(email string, role models.UserRole) (bool, error) {
	query := `
		UPDATE users
		SET role = $1, updated_at = NOW()
		WHERE email = $2
	`

	result, err := r.db.Exec(query, role, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, fmt.Errorf("failed to set role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}
