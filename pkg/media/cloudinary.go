package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// Folders and transformations used by the site
const (
	GalleryFolder         = "gallery"
	GalleryTransformation = "c_fill,w_800,h_600/q_auto"
	StoryFolder           = "stories"
	StoryTransformation   = "c_fill,w_1200,h_800/q_auto:good"
)

// ErrNotConfigured is returned when no Cloudinary account is set up
var ErrNotConfigured = errors.New("media host not configured")

// Asset is an uploaded file on the media host
type Asset struct {
	URL      string
	PublicID string
}

// Uploader stores and removes images. file may be an io.Reader, a local path or a data URI.
type Uploader interface {
	Upload(ctx context.Context, file interface{}, folder, transformation string) (*Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Cloudinary implements Uploader on the Cloudinary API
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	logger *logrus.Logger
}

// NewCloudinary creates an uploader. Missing credentials yield an uploader that
// refuses every call with ErrNotConfigured.
func NewCloudinary(cloudName, apiKey, apiSecret string, logger *logrus.Logger) (*Cloudinary, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		logger.Warn("Cloudinary credentials missing, uploads disabled")
		return &Cloudinary{logger: logger}, nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, logger: logger}, nil
}

// Upload sends file to folder with an eager transformation
func (c *Cloudinary) Upload(ctx context.Context, file interface{}, folder, transformation string) (*Asset, error) {
	if c.cld == nil {
		return nil, ErrNotConfigured
	}

	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		Transformation: transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", resp.Error.Message)
	}

	c.logger.WithFields(logrus.Fields{
		"folder":    folder,
		"public_id": resp.PublicID,
	}).Info("Image uploaded")

	return &Asset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// Destroy removes an asset by public id
func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	if c.cld == nil {
		return ErrNotConfigured
	}

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete image: %s", resp.Error.Message)
	}
	return nil
}
