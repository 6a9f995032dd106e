package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NullString wraps sql.NullString so it marshals as a JSON string or null
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NewNullString returns a valid NullString for non-empty input
func NewNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: s != ""}}
}

// NullTime wraps sql.NullTime so it marshals as a JSON timestamp or null
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// UserRole is the authorization role of an account
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents a registered customer or administrator
type User struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	FullName          string     `json:"fullName" db:"full_name"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	ContactNumber     string     `json:"contactNumber" db:"contact_number"`
	Role              UserRole   `json:"role" db:"role"`
	ResetOTPHash      NullString `json:"-" db:"reset_otp_hash"`
	ResetOTPExpiresAt NullTime   `json:"-" db:"reset_otp_expires_at"`
	ResetOTPAttempts  int        `json:"-" db:"reset_otp_attempts"`
	LastLoginAt       NullTime   `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user holds the ADMIN role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the subset of user fields joined onto booking listings
type UserSummary struct {
	ID            uuid.UUID `json:"id" db:"user_id"`
	FullName      string    `json:"fullName" db:"user_full_name"`
	Email         string    `json:"email" db:"user_email"`
	ContactNumber string    `json:"contactNumber" db:"user_contact_number"`
}
