package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded for admin mutations
const (
	AuditPriceUpdate          = "price_update"
	AuditCalendarSettings     = "calendar_settings_update"
	AuditAvailableDateAdd     = "available_date_add"
	AuditAvailableDateRemove  = "available_date_remove"
	AuditAvailableDateReplace = "available_dates_replace"
	AuditBlockedDateAdd       = "blocked_date_add"
	AuditBlockedDateRemove    = "blocked_date_remove"
	AuditBlockedDateReplace   = "blocked_dates_replace"
	AuditMailBookingStatus    = "mail_booking_status_update"
	AuditGalleryUpload        = "gallery_upload"
	AuditGalleryDelete        = "gallery_delete"
	AuditGallerySeed          = "gallery_seed"
	AuditPasswordReset        = "password_reset"
)

// AuditLog is a stored audit event
type AuditLog struct {
	ID         uuid.UUID             `json:"id" db:"id"`
	UserID     uuid.NullUUID         `json:"userId" db:"user_id"`
	Action     string                `json:"action" db:"action"`
	EntityType string                `json:"entityType" db:"entity_type"`
	EntityID   NullString            `json:"entityId" db:"entity_id"`
	IPAddress  string                `json:"ipAddress" db:"ip_address"`
	UserAgent  string                `json:"userAgent" db:"user_agent"`
	Details    JSONB[map[string]any] `json:"details" db:"details"`
	CreatedAt  time.Time             `json:"createdAt" db:"created_at"`
}
