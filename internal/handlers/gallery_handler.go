package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/services"
)

// MaxUploadBytes caps a gallery upload
const MaxUploadBytes = 10 << 20

// GalleryHandler serves the photo gallery
type GalleryHandler struct {
	galleryService *services.GalleryService
	logger         *logrus.Logger
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(galleryService *services.GalleryService, logger *logrus.Logger) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService, logger: logger}
}

// List handles GET /api/v1/gallery
func (h *GalleryHandler) List(c *gin.Context) {
	images, err := h.galleryService.List()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", images)
}

// Upload handles POST /api/v1/gallery (multipart: image, title)
func (h *GalleryHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	var file interface{}
	header, err := c.FormFile("image")
	if err == nil {
		f, err := header.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer f.Close()
		file = f
	}

	image, err := h.galleryService.Upload(c.Request.Context(), actorFrom(c), c.PostForm("title"), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Image uploaded successfully", image)
}

// Delete handles DELETE /api/v1/gallery/:id
func (h *GalleryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.galleryService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Image deleted successfully", nil)
}

// SeedDefaults handles POST /api/v1/gallery/seed-defaults
func (h *GalleryHandler) SeedDefaults(c *gin.Context) {
	images, err := h.galleryService.SeedDefaults(actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Default images seeded", images)
}
