package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryImage is a hosted photo shown in the public gallery
type GalleryImage struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	ImageURL     string        `json:"imageUrl" db:"image_url"`
	CloudinaryID string        `json:"cloudinaryId" db:"cloudinary_id"`
	IsDefault    bool          `json:"isDefault" db:"is_default"`
	UploadedBy   uuid.NullUUID `json:"uploadedBy" db:"uploaded_by"`
	UploadedAt   time.Time     `json:"uploadedAt" db:"uploaded_at"`
}
