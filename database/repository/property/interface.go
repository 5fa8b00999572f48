// File: database/repository/property/interface.go
package propertyRepo

import (
	"context"
	"errors"

	"github.com/outrigger999/rental-recon/models"
)

// ErrNotFound is returned when a property, image or note does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines persistence operations for property listings and their
// embedded images and notes.
type Repository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, skip, limit int64) ([]models.Property, error)
	Update(ctx context.Context, p *models.Property) error
	// UpdateTravelTimes sets the per-slot conservative estimates; a nil value
	// clears the stored field for that slot.
	UpdateTravelTimes(ctx context.Context, id string, times map[models.TravelSlot]*float64) error
	Delete(ctx context.Context, id string) error

	AddImage(ctx context.Context, propertyID string, img models.PropertyImage) error
	// DemoteMainImage clears the main flag on any existing main image.
	DemoteMainImage(ctx context.Context, propertyID string) error
	GetImage(ctx context.Context, propertyID, imageID string) (*models.PropertyImage, error)
	DeleteImage(ctx context.Context, propertyID, imageID string) error

	AddNote(ctx context.Context, propertyID string, note models.PropertyNote) error
	ListNotes(ctx context.Context, propertyID string) ([]models.PropertyNote, error)
	DeleteNote(ctx context.Context, propertyID, noteID string) error
}
