package traveltime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/outrigger999/rental-recon/config"
	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"

	"go.uber.org/zap"
)

// ErrInvalidInput is returned when the origin or destination address is empty.
var ErrInvalidInput = errors.New("origin and destination must be provided")

// UpstreamError reports a non-OK top-level status from the routing service.
// It aborts the whole estimation call; nothing is persisted.
type UpstreamError struct {
	Status string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("distance matrix API error: %s", e.Status)
}

// Service computes per-slot commute estimates between two addresses.
type Service interface {
	// Estimate computes travel times for all slots departing on the next
	// occurrence of Monday (or Tuesday when useTuesday is set), shifted by
	// dayOffset days. Slots that produced no usable value are simply absent
	// from the report.
	Estimate(ctx context.Context, origin, destination string, useTuesday bool, dayOffset int) (*models.TravelTimeReport, error)
}

// DefaultService is the production implementation. With an API key it queries
// the Google Distance Matrix per slot; without one it degrades to a geocoded
// straight-line approximation.
type DefaultService struct {
	APIKey     string
	MatrixURL  string
	GeocodeURL string
	UserAgent  string
	Client     *http.Client
	Now        func() time.Time
}

// NewService builds a DefaultService from the application configuration.
func NewService() *DefaultService {
	return &DefaultService{
		APIKey:     config.AppConfig.GoogleMapsAPIKey,
		MatrixURL:  config.AppConfig.DistanceMatrixURL,
		GeocodeURL: config.AppConfig.NominatimURL,
		UserAgent:  "RentalRecon/1.0",
		Client:     &http.Client{Timeout: 10 * time.Second},
		Now:        time.Now,
	}
}

func (s *DefaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultService) Estimate(ctx context.Context, origin, destination string, useTuesday bool, dayOffset int) (*models.TravelTimeReport, error) {
	if origin == "" || destination == "" {
		return nil, ErrInvalidInput
	}

	report := &models.TravelTimeReport{
		Estimates: make(map[models.TravelSlot]*models.SlotEstimate, len(models.AllTravelSlots)),
	}

	if s.APIKey == "" {
		utils.GetLogger().Warn("Google Maps API key not configured, using fallback calculation")
		s.fallbackEstimate(ctx, origin, destination, report)
	} else if err := s.liveEstimate(ctx, origin, destination, useTuesday, dayOffset, report); err != nil {
		return nil, err
	}

	report.CalculationDay = calculationDay(useTuesday, dayOffset)
	report.CalculationTimestamp = s.now().Unix()
	return report, nil
}

// liveEstimate queries the routing service once per slot. The five queries
// are independent and run concurrently; a failed slot is recorded as absent
// without aborting the others, except for a non-OK top-level service status
// which fails the whole call.
func (s *DefaultService) liveEstimate(ctx context.Context, origin, destination string, useTuesday bool, dayOffset int, report *models.TravelTimeReport) error {
	logger := utils.GetLogger()

	type slotResult struct {
		slot models.TravelSlot
		est  *models.SlotEstimate
		err  error
	}

	results := make(chan slotResult, len(models.AllTravelSlots))
	var wg sync.WaitGroup
	for _, slot := range models.AllTravelSlots {
		wg.Add(1)
		go func(slot models.TravelSlot) {
			defer wg.Done()
			departure := s.departureMoment(slot, useTuesday, dayOffset)
			est, err := s.querySlot(ctx, origin, destination, departure.Unix())
			results <- slotResult{slot: slot, est: est, err: err}
		}(slot)
	}
	wg.Wait()
	close(results)

	slotFailed := false
	for res := range results {
		var upstream *UpstreamError
		switch {
		case res.err == nil:
			report.Estimates[res.slot] = res.est
		case errors.As(res.err, &upstream):
			return res.err
		default:
			logger.Error("Travel time query failed",
				zap.String("slot", string(res.slot)), zap.Error(res.err))
			slotFailed = true
		}
	}

	// Outlier detection needs enough slots to form a meaningful median, and a
	// slot-level failure already signals an unreliable run.
	if len(report.Estimates) >= 3 && !slotFailed {
		flagAnomalies(report.Estimates, !useTuesday && dayOffset == 0)
	}
	return nil
}

// calculationDay builds the human label for the reference day the estimates
// were computed against.
func calculationDay(useTuesday bool, dayOffset int) string {
	day := "Monday"
	if useTuesday {
		day = "Tuesday"
	}
	switch {
	case dayOffset < 0:
		return fmt.Sprintf("past %s (%d days ago)", day, -dayOffset)
	case dayOffset > 0:
		return fmt.Sprintf("future %s (%d days ahead)", day, dayOffset)
	default:
		return "next " + day
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// newEstimate derives the displayed range and the conservative value from a
// typical travel time in minutes. The persisted conservative value is the
// upper bound on purpose: trip planning is biased toward the worst case.
func newEstimate(typical float64) *models.SlotEstimate {
	min := int(math.Round(typical * 0.7))
	if min < 1 {
		min = 1
	}
	max := int(math.Round(typical * 1.3))
	return &models.SlotEstimate{
		Typical:      typical,
		Min:          min,
		Max:          max,
		Display:      fmt.Sprintf("%d-%d", min, max),
		Conservative: float64(max),
	}
}
