package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	settingsRepo "github.com/outrigger999/rental-recon/database/repository/settings"
	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/services/traveltime"
	"github.com/outrigger999/rental-recon/utils"
)

// ErrOriginNotSet is returned when travel times are requested before the
// global origin address has been configured.
var ErrOriginNotSet = errors.New("global origin address not set")

// Service defines business logic for property listings.
type Service interface {
	Create(ctx context.Context, p *models.Property) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, skip, limit int64) ([]models.Property, error)
	Update(ctx context.Context, p *models.Property) (*models.Property, error)
	Patch(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error)
	Delete(ctx context.Context, id string) error
	// CalculateTravelTimes estimates the commute from the configured origin,
	// persists the conservative per-slot values, and records a note on the
	// property when anomalies are detected.
	CalculateTravelTimes(ctx context.Context, id string, useTuesday bool, dayOffset int) (*models.Property, *models.TravelTimeReport, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Repo     propertyRepo.Repository
	Settings settingsRepo.Repository
	Travel   traveltime.Service
}

func (s *DefaultService) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	if p.Address == "" || p.PropertyType == "" {
		return nil, fmt.Errorf("address and property type are required")
	}

	p.ID = uuid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []models.PropertyImage{}
	}
	if p.Notes == nil {
		p.Notes = []models.PropertyNote{}
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	// Best-effort travel time calculation; a failure never fails the create.
	s.autoCalculateTravelTimes(ctx, p)

	return s.Repo.GetByID(ctx, p.ID)
}

func (s *DefaultService) autoCalculateTravelTimes(ctx context.Context, p *models.Property) {
	logger := utils.GetLogger()

	settings, err := s.Settings.Get(ctx)
	if err != nil || settings.OriginAddress == "" {
		return
	}

	report, err := s.Travel.Estimate(ctx, settings.OriginAddress, p.Address, false, 0)
	if err != nil {
		logger.Warn("Could not calculate travel times",
			zap.String("propertyId", p.ID), zap.Error(err))
		return
	}
	if err := s.Repo.UpdateTravelTimes(ctx, p.ID, report.ConservativeTimes()); err != nil {
		logger.Warn("Could not store travel times",
			zap.String("propertyId", p.ID), zap.Error(err))
	}
}

func (s *DefaultService) Get(ctx context.Context, id string) (*models.Property, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultService) List(ctx context.Context, skip, limit int64) ([]models.Property, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.Repo.List(ctx, skip, limit)
}

// Update replaces the editable listing fields while preserving images, notes
// and previously calculated travel times.
func (s *DefaultService) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	existing, err := s.Repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	existing.Address = p.Address
	existing.PropertyType = p.PropertyType
	existing.PricePerMonth = p.PricePerMonth
	existing.SquareFootage = p.SquareFootage
	existing.Description = p.Description
	existing.Contacts = p.Contacts
	existing.CatFriendly = p.CatFriendly
	existing.AirConditioning = p.AirConditioning
	existing.OnPremisesParking = p.OnPremisesParking
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Patch applies the partial update used for by-hand travel time corrections
// and contact edits. Nil fields are left untouched.
func (s *DefaultService) Patch(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error) {
	existing, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.TravelTime830AM != nil {
		existing.TravelTime830AM = patch.TravelTime830AM
	}
	if patch.TravelTime930AM != nil {
		existing.TravelTime930AM = patch.TravelTime930AM
	}
	if patch.TravelTimeMidday != nil {
		existing.TravelTimeMidday = patch.TravelTimeMidday
	}
	if patch.TravelTime630PM != nil {
		existing.TravelTime630PM = patch.TravelTime630PM
	}
	if patch.TravelTime730PM != nil {
		existing.TravelTime730PM = patch.TravelTime730PM
	}
	if patch.Contacts != nil {
		existing.Contacts = *patch.Contacts
	}
	existing.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *DefaultService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *DefaultService) CalculateTravelTimes(ctx context.Context, id string, useTuesday bool, dayOffset int) (*models.Property, *models.TravelTimeReport, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.OriginAddress == "" {
		return nil, nil, ErrOriginNotSet
	}

	report, err := s.Travel.Estimate(ctx, settings.OriginAddress, p.Address, useTuesday, dayOffset)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Repo.UpdateTravelTimes(ctx, id, report.ConservativeTimes()); err != nil {
		return nil, nil, fmt.Errorf("failed to store travel times: %w", err)
	}

	if report.HasAnomalies() {
		note := models.PropertyNote{
			ID:        uuid.New().String(),
			Content:   anomalyNoteContent(report),
			CreatedAt: time.Now(),
		}
		if err := s.Repo.AddNote(ctx, id, note); err != nil {
			utils.GetLogger().Warn("Could not record anomaly note",
				zap.String("propertyId", id), zap.Error(err))
		}
	}

	updated, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, report, nil
}

// anomalyNoteContent summarizes the flagged slots for the property's note log.
func anomalyNoteContent(report *models.TravelTimeReport) string {
	content := fmt.Sprintf("Travel time anomalies detected on %s. ", report.CalculationDay)
	for _, slot := range models.AllTravelSlots {
		est := report.Estimates[slot]
		if est == nil || !est.Anomaly {
			continue
		}
		note := est.Note
		if note == "" {
			note = "Unusual traffic pattern"
		}
		content += fmt.Sprintf("%s: %s. ", slot, note)
	}
	return content
}
