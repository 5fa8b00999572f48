package storage

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/outrigger999/rental-recon/config"
)

// Incoming transformation applied to every upload: cap at full HD and let the
// provider pick the compression quality. This replaces local image
// optimization entirely.
const uploadTransformation = "c_limit,w_1920,h_1080,q_auto"

// UploadResult carries the stored image's location and metadata.
type UploadResult struct {
	PublicID string
	URL      string
	Format   string
	Width    int
	Height   int
	SizeKB   float64
}

// Service defines the interface for image storage operations.
type Service interface {
	Upload(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryService implements Service using Cloudinary.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryService initializes a Cloudinary-backed storage service from
// the application configuration.
func NewCloudinaryService() (*CloudinaryService, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

func (s *CloudinaryService) Upload(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		Transformation: uploadTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("upload failed: %s", resp.Error.Message)
	}

	return &UploadResult{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
		Format:   resp.Format,
		Width:    resp.Width,
		Height:   resp.Height,
		SizeKB:   math.Round(float64(resp.Bytes)/1024*100) / 100,
	}, nil
}

func (s *CloudinaryService) Delete(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("delete failed: %s", resp.Result)
	}
	return nil
}
