package traveltime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"context"

	"github.com/outrigger999/rental-recon/models"
)

// matrixResponse mirrors the Distance Matrix payload fields we consume.
type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status            string         `json:"status"`
			Duration          *durationValue `json:"duration"`
			DurationInTraffic *durationValue `json:"duration_in_traffic"`
		} `json:"elements"`
	} `json:"rows"`
}

type durationValue struct {
	Value int64 `json:"value"` // seconds
}

// querySlot fetches the travel time for one departure moment. A *UpstreamError
// is fatal for the whole estimation call; any other error fails only this slot.
func (s *DefaultService) querySlot(ctx context.Context, origin, destination string, departureUnix int64) (*models.SlotEstimate, error) {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("departure_time", strconv.FormatInt(departureUnix, 10))
	q.Set("traffic_model", "best_guess")
	q.Set("mode", "driving")
	q.Set("key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.MatrixURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix request: unexpected status %d", resp.StatusCode)
	}

	var data matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("distance matrix response: %w", err)
	}

	if data.Status != "OK" {
		return nil, &UpstreamError{Status: data.Status}
	}
	if len(data.Rows) == 0 || len(data.Rows[0].Elements) == 0 {
		return nil, errors.New("no route found")
	}

	element := data.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("route calculation error: %s", element.Status)
	}

	// Prefer the traffic-aware duration when present.
	var seconds int64
	switch {
	case element.DurationInTraffic != nil:
		seconds = element.DurationInTraffic.Value
	case element.Duration != nil:
		seconds = element.Duration.Value
	default:
		return nil, errors.New("no duration data available")
	}

	typical := round1(float64(seconds) / 60)
	return newEstimate(typical), nil
}
