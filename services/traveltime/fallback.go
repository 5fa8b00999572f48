package traveltime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"

	"go.uber.org/zap"
)

// fallbackEstimate approximates travel times without a routing API: geocode
// both addresses, take the great-circle distance at an average city driving
// speed of 40 km/h, and apply fixed per-slot congestion multipliers. When
// geocoding fails for either address, every slot stays absent; the fallback
// never raises.
func (s *DefaultService) fallbackEstimate(ctx context.Context, origin, destination string, report *models.TravelTimeReport) {
	logger := utils.GetLogger()

	originLat, originLon, err := s.geocode(ctx, origin)
	if err != nil {
		logger.Error("Geocoding failed", zap.String("address", origin), zap.Error(err))
		return
	}
	destLat, destLon, err := s.geocode(ctx, destination)
	if err != nil {
		logger.Error("Geocoding failed", zap.String("address", destination), zap.Error(err))
		return
	}

	distanceKm := haversine(originLat, originLon, destLat, destLon)
	base := round1(distanceKm / 40 * 60)

	for _, slot := range models.AllTravelSlots {
		typical := round1(base * slot.FallbackMultiplier())
		est := newEstimate(typical)
		// The fallback persists the multiplied estimate itself rather than
		// the upper display bound.
		est.Conservative = typical
		report.Estimates[slot] = est
	}
}

// geocode resolves an address to coordinates via the public Nominatim lookup.
func (s *DefaultService) geocode(ctx context.Context, address string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.GeocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("geocode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, errors.New("no geocoding results")
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode response: %w", err)
	}
	lon, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode response: %w", err)
	}
	return lat, lon, nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
