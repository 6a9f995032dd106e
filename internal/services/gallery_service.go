package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/media"
)

// GalleryStore persists gallery images
type GalleryStore interface {
	List() ([]models.GalleryImage, error)
	GetByID(id uuid.UUID) (*models.GalleryImage, error)
	Create(img *models.GalleryImage) error
	Delete(id uuid.UUID) error
	ReplaceDefaults(images []models.GalleryImage) error
}

// GalleryService manages hosted gallery images
type GalleryService struct {
	store    GalleryStore
	media    media.Uploader
	defaults []string
	audit    *AuditService
	logger   *logrus.Logger
}

// NewGalleryService creates a new gallery service. defaults are "title|url" pairs.
func NewGalleryService(store GalleryStore, uploader media.Uploader, defaults []string, audit *AuditService, logger *logrus.Logger) *GalleryService {
	return &GalleryService{
		store:    store,
		media:    uploader,
		defaults: defaults,
		audit:    audit,
		logger:   logger,
	}
}

// List returns every image, newest first
func (s *GalleryService) List() ([]models.GalleryImage, error) {
	images, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []models.GalleryImage{}
	}
	return images, nil
}

// Upload hosts file and records it under title
func (s *GalleryService) Upload(ctx context.Context, actor Actor, title string, file interface{}) (*models.GalleryImage, error) {
	title = strings.TrimSpace(title)
	if file == nil {
		return nil, invalid("No image file provided")
	}
	if title == "" {
		return nil, invalid("Title is required")
	}

	asset, err := s.media.Upload(ctx, file, media.GalleryFolder, media.GalleryTransformation)
	if err != nil {
		return nil, fmt.Errorf("failed to upload gallery image: %w", err)
	}

	img := &models.GalleryImage{
		ID:           uuid.New(),
		Title:        title,
		ImageURL:     asset.URL,
		CloudinaryID: asset.PublicID,
		UploadedBy:   actorID(actor),
		UploadedAt:   time.Now(),
	}
	if err := s.store.Create(img); err != nil {
		if derr := s.media.Destroy(ctx, asset.PublicID); derr != nil {
			s.logger.WithError(derr).WithField("public_id", asset.PublicID).Warn("Failed to remove orphaned upload")
		}
		return nil, err
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditGalleryUpload,
		EntityType: "gallery_image",
		EntityID:   img.ID.String(),
		Details:    map[string]interface{}{"title": title},
	})
	return img, nil
}

// Delete removes an image. Remote assets of uploaded images are destroyed best-effort.
func (s *GalleryService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	img, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if img == nil {
		return ErrNotFound
	}

	if !img.IsDefault && img.CloudinaryID != "" {
		if err := s.media.Destroy(ctx, img.CloudinaryID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"image_id":  id,
				"public_id": img.CloudinaryID,
			}).Warn("Failed to delete remote gallery asset")
		}
	}

	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditGalleryDelete,
		EntityType: "gallery_image",
		EntityID:   id.String(),
	})
	return nil
}

// SeedDefaults replaces the default images with the configured set
func (s *GalleryService) SeedDefaults(actor Actor) ([]models.GalleryImage, error) {
	images := s.defaultImages()
	if err := s.store.ReplaceDefaults(images); err != nil {
		return nil, err
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditGallerySeed,
		EntityType: "gallery_image",
		Details:    map[string]interface{}{"count": len(images)},
	})
	return images, nil
}

func (s *GalleryService) defaultImages() []models.GalleryImage {
	now := time.Now()
	images := make([]models.GalleryImage, 0, len(s.defaults))
	for _, pair := range s.defaults {
		title, url, ok := strings.Cut(pair, "|")
		title, url = strings.TrimSpace(title), strings.TrimSpace(url)
		if !ok || title == "" || url == "" {
			s.logger.WithField("entry", pair).Warn("Skipping malformed default gallery image")
			continue
		}
		images = append(images, models.GalleryImage{
			ID:         uuid.New(),
			Title:      title,
			ImageURL:   url,
			IsDefault:  true,
			UploadedAt: now,
		})
	}
	return images
}
