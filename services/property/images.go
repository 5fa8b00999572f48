package property

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/services/storage"
	"github.com/outrigger999/rental-recon/utils"
)

// ImageService manages listing photos: upload, clipboard paste, and removal.
// Optimization happens at the storage provider via an upload transformation.
type ImageService interface {
	Attach(ctx context.Context, propertyID string, file io.Reader, originalFilename string, isMain bool) (*models.PropertyImage, error)
	// Paste stores a base64-encoded image (with or without a data URL prefix).
	Paste(ctx context.Context, propertyID, data string, isMain bool) (*models.PropertyImage, error)
	Remove(ctx context.Context, propertyID, imageID string) error
	// RemoveMain deletes the current main image, if any.
	RemoveMain(ctx context.Context, propertyID string) error
}

// DefaultImageService is the production implementation.
type DefaultImageService struct {
	Repo    propertyRepo.Repository
	Storage storage.Service
}

func (s *DefaultImageService) Attach(ctx context.Context, propertyID string, file io.Reader, originalFilename string, isMain bool) (*models.PropertyImage, error) {
	// Fail early on a missing property rather than after the upload.
	if _, err := s.Repo.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	originalFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalFilename)), ".")
	return s.store(ctx, propertyID, file, originalFormat, isMain)
}

func (s *DefaultImageService) Paste(ctx context.Context, propertyID, data string, isMain bool) (*models.PropertyImage, error) {
	if _, err := s.Repo.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	// Strip a data URL prefix when present.
	if idx := strings.Index(data, ","); idx >= 0 {
		data = data[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	// Pasted images are assumed to be PNG screenshots.
	return s.store(ctx, propertyID, bytes.NewReader(raw), "png", isMain)
}

func (s *DefaultImageService) store(ctx context.Context, propertyID string, file io.Reader, originalFormat string, isMain bool) (*models.PropertyImage, error) {
	folder := "property_" + propertyID
	result, err := s.Storage.Upload(ctx, file, folder, uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	if isMain {
		if err := s.Repo.DemoteMainImage(ctx, propertyID); err != nil {
			utils.GetLogger().Warn("Could not demote existing main image",
				zap.String("propertyId", propertyID), zap.Error(err))
		}
	}

	img := models.PropertyImage{
		ID:             uuid.New().String(),
		Filename:       result.PublicID,
		URL:            result.URL,
		IsMain:         isMain,
		Width:          result.Width,
		Height:         result.Height,
		Format:         result.Format,
		SizeKB:         result.SizeKB,
		IsOptimized:    true,
		OriginalFormat: originalFormat,
	}
	if err := s.Repo.AddImage(ctx, propertyID, img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *DefaultImageService) Remove(ctx context.Context, propertyID, imageID string) error {
	img, err := s.Repo.GetImage(ctx, propertyID, imageID)
	if err != nil {
		return err
	}

	if err := s.Storage.Delete(ctx, img.Filename); err != nil {
		// The record is still removed; an orphaned stored file is preferable
		// to a dangling reference.
		utils.GetLogger().Warn("Could not delete stored image",
			zap.String("publicId", img.Filename), zap.Error(err))
	}
	return s.Repo.DeleteImage(ctx, propertyID, imageID)
}

func (s *DefaultImageService) RemoveMain(ctx context.Context, propertyID string) error {
	p, err := s.Repo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	for _, img := range p.Images {
		if img.IsMain {
			return s.Remove(ctx, propertyID, img.ID)
		}
	}
	return nil
}

// CleanupImages removes every stored image for a property. Used on property
// deletion; failures are logged and skipped.
func (s *DefaultImageService) CleanupImages(ctx context.Context, p *models.Property) {
	for _, img := range p.Images {
		if err := s.Storage.Delete(ctx, img.Filename); err != nil {
			utils.GetLogger().Warn("Could not delete stored image",
				zap.String("publicId", img.Filename), zap.Error(err))
		}
	}
}
