package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

const galleryColumns = `id, title, image_url, cloudinary_id, is_default, uploaded_by, uploaded_at`

// GalleryRepository persists gallery image records
type GalleryRepository struct {
	db DB
}

// NewGalleryRepository creates a new gallery repository
func NewGalleryRepository(db DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

// List returns every image, newest upload first
func (r *GalleryRepository) List() ([]models.GalleryImage, error) {
	images := []models.GalleryImage{}
	if err := r.db.Select(&images, `SELECT `+galleryColumns+` FROM gallery_images ORDER BY uploaded_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list gallery images: %w", err)
	}
	return images, nil
}

// GetByID retrieves an image, or nil when it does not exist
func (r *GalleryRepository) GetByID(id uuid.UUID) (*models.GalleryImage, error) {
	var img models.GalleryImage
	err := r.db.Get(&img, `SELECT `+galleryColumns+` FROM gallery_images WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gallery image: %w", err)
	}
	return &img, nil
}

// Create inserts an image record
func (r *GalleryRepository) Create(img *models.GalleryImage) error {
	query := `
		INSERT INTO gallery_images (id, title, image_url, cloudinary_id, is_default, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(query, img.ID, img.Title, img.ImageURL, img.CloudinaryID, img.IsDefault, img.UploadedBy, img.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create gallery image: %w", err)
	}
	return nil
}

// Delete removes an image record
func (r *GalleryRepository) Delete(id uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM gallery_images WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete gallery image: %w", err)
	}
	return nil
}

// ReplaceDefaults swaps every default image for images in one transaction
func (r *GalleryRepository) ReplaceDefaults(images []models.GalleryImage) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gallery_images WHERE is_default = TRUE`); err != nil {
		return fmt.Errorf("failed to clear default images: %w", err)
	}

	for _, img := range images {
		_, err := tx.Exec(
			`INSERT INTO gallery_images (id, title, image_url, cloudinary_id, is_default, uploaded_at)
			 VALUES ($1, $2, $3, $4, TRUE, $5)`,
			img.ID, img.Title, img.ImageURL, img.CloudinaryID, img.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert default image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default images: %w", err)
	}
	return nil
}

// Count returns the number of images
func (r *GalleryRepository) Count() (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM gallery_images`); err != nil {
		return 0, fmt.Errorf("failed to count gallery images: %w", err)
	}
	return n, nil
}
