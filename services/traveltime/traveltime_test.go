package traveltime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/outrigger999/rental-recon/models"
)

// mondayMorning is a fixed Monday used as "now" so departure moments are
// deterministic. Weekday checked in departure_test.go.
var mondayMorning = time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)

// newMatrixServer serves Distance Matrix responses keyed by the departure
// hour (UTC). A slot whose hour appears in elementStatus gets that element
// status instead of a duration.
func newMatrixServer(t *testing.T, topStatus string, durations map[int]int64, elementStatus map[int]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("traffic_model"); got != "best_guess" {
			t.Errorf("traffic_model = %q, want best_guess", got)
		}
		if topStatus != "OK" {
			fmt.Fprintf(w, `{"status": %q}`, topStatus)
			return
		}

		dep, err := strconv.ParseInt(r.URL.Query().Get("departure_time"), 10, 64)
		if err != nil {
			t.Errorf("bad departure_time: %v", err)
		}
		hour := time.Unix(dep, 0).UTC().Hour()

		if status, ok := elementStatus[hour]; ok {
			fmt.Fprintf(w, `{"status": "OK", "rows": [{"elements": [{"status": %q}]}]}`, status)
			return
		}
		seconds, ok := durations[hour]
		if !ok {
			t.Errorf("unexpected departure hour %d", hour)
		}
		fmt.Fprintf(w,
			`{"status": "OK", "rows": [{"elements": [{"status": "OK", "duration": {"value": %d}, "duration_in_traffic": {"value": %d}}]}]}`,
			seconds, seconds)
	}))
}

func newTestService(srv *httptest.Server) *DefaultService {
	return &DefaultService{
		APIKey:    "test-key",
		MatrixURL: srv.URL,
		UserAgent: "test",
		Client:    srv.Client(),
		Now:       func() time.Time { return mondayMorning },
	}
}

func TestEstimateAllSlots(t *testing.T) {
	srv := newMatrixServer(t, "OK", map[int]int64{8: 1800, 9: 1800, 12: 1800, 18: 1800, 19: 1800}, nil)
	defer srv.Close()
	svc := newTestService(srv)

	report, err := svc.Estimate(context.Background(), "origin", "destination", false, 0)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if len(report.Estimates) != 5 {
		t.Fatalf("got %d estimates, want 5", len(report.Estimates))
	}
	for _, slot := range models.AllTravelSlots {
		est := report.Estimates[slot]
		if est == nil {
			t.Fatalf("slot %s missing", slot)
		}
		if est.Typical != 30 {
			t.Errorf("slot %s typical = %v, want 30", slot, est.Typical)
		}
		if est.Min != 21 || est.Max != 39 {
			t.Errorf("slot %s bounds = %d-%d, want 21-39", slot, est.Min, est.Max)
		}
		if est.Display != "21-39" {
			t.Errorf("slot %s display = %q, want 21-39", slot, est.Display)
		}
		if est.Conservative != 39 {
			t.Errorf("slot %s conservative = %v, want 39", slot, est.Conservative)
		}
		if est.Anomaly {
			t.Errorf("slot %s flagged as anomaly with uniform travel times", slot)
		}
	}
	if report.CalculationDay != "next Monday" {
		t.Errorf("calculation day = %q, want next Monday", report.CalculationDay)
	}
	if report.CalculationTimestamp != mondayMorning.Unix() {
		t.Errorf("calculation timestamp = %d, want %d", report.CalculationTimestamp, mondayMorning.Unix())
	}
}

func TestEstimateFlagsMorningAnomaly(t *testing.T) {
	// 08:30 takes 120 minutes against a 30 minute baseline. Conservative
	// values are 156 vs 39; the median is 39 so only 08:30 crosses 2x.
	srv := newMatrixServer(t, "OK", map[int]int64{8: 7200, 9: 1800, 12: 1800, 18: 1800, 19: 1800}, nil)
	defer srv.Close()
	svc := newTestService(srv)

	report, err := svc.Estimate(context.Background(), "origin", "destination", false, 0)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}

	morning := report.Estimates[models.Slot830AM]
	if !morning.Anomaly {
		t.Error("08:30 slot not flagged as anomaly")
	}
	if morning.Note != anomalyNote {
		t.Errorf("08:30 note = %q, want %q", morning.Note, anomalyNote)
	}
	for _, slot := range []models.TravelSlot{models.Slot930AM, models.SlotMidday, models.Slot630PM, models.Slot730PM} {
		if report.Estimates[slot].Anomaly {
			t.Errorf("slot %s flagged as anomaly, want only 08:30", slot)
		}
	}
	if !report.HasAnomalies() {
		t.Error("HasAnomalies() = false after a flagged slot")
	}
}

func TestEstimateAnomalyNoteSkippedOnRerun(t *testing.T) {
	durations := map[int]int64{8: 7200, 9: 1800, 12: 1800, 18: 1800, 19: 1800}

	cases := []struct {
		name       string
		useTuesday bool
		dayOffset  int
	}{
		{"tuesday", true, 0},
		{"day offset", false, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newMatrixServer(t, "OK", durations, nil)
			defer srv.Close()
			svc := newTestService(srv)

			report, err := svc.Estimate(context.Background(), "origin", "destination", tc.useTuesday, tc.dayOffset)
			if err != nil {
				t.Fatalf("Estimate returned error: %v", err)
			}
			est := report.Estimates[models.Slot830AM]
			if !est.Anomaly {
				t.Error("08:30 slot not flagged as anomaly")
			}
			if est.Note != "" {
				t.Errorf("08:30 note = %q, want empty on a re-run query", est.Note)
			}
		})
	}
}

func TestEstimateUpstreamErrorAbortsAll(t *testing.T) {
	srv := newMatrixServer(t, "REQUEST_DENIED", nil, nil)
	defer srv.Close()
	svc := newTestService(srv)

	report, err := svc.Estimate(context.Background(), "origin", "destination", false, 0)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.Status != "REQUEST_DENIED" {
		t.Errorf("upstream status = %q, want REQUEST_DENIED", upstream.Status)
	}
	if report != nil {
		t.Errorf("report = %+v, want nil on upstream error", report)
	}
}

func TestEstimateSlotFailureIsolated(t *testing.T) {
	// Midday has no route; the other slots still produce estimates, and the
	// slot failure suppresses anomaly detection even with an 08:30 spike.
	srv := newMatrixServer(t, "OK",
		map[int]int64{8: 7200, 9: 1800, 18: 1800, 19: 1800},
		map[int]string{12: "ZERO_RESULTS"})
	defer srv.Close()
	svc := newTestService(srv)

	report, err := svc.Estimate(context.Background(), "origin", "destination", false, 0)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if report.Estimates[models.SlotMidday] != nil {
		t.Error("midday slot present, want absent after element error")
	}
	if len(report.Estimates) != 4 {
		t.Fatalf("got %d estimates, want 4", len(report.Estimates))
	}
	if report.Estimates[models.Slot830AM].Anomaly {
		t.Error("anomaly flagged despite a failed slot")
	}
}

func TestEstimateRejectsEmptyAddresses(t *testing.T) {
	svc := &DefaultService{APIKey: "test-key"}

	for _, tc := range []struct{ origin, destination string }{
		{"", "destination"},
		{"origin", ""},
		{"", ""},
	} {
		if _, err := svc.Estimate(context.Background(), tc.origin, tc.destination, false, 0); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Estimate(%q, %q) err = %v, want ErrInvalidInput", tc.origin, tc.destination, err)
		}
	}
}

func TestNewEstimateBounds(t *testing.T) {
	cases := []struct {
		typical      float64
		min, max     int
		display      string
		conservative float64
	}{
		{30, 21, 39, "21-39", 39},
		{10, 7, 13, "7-13", 13},
		{1, 1, 1, "1-1", 1},
		{0.5, 1, 1, "1-1", 1}, // lower bound clamps to at least one minute
	}
	for _, tc := range cases {
		est := newEstimate(tc.typical)
		if est.Min != tc.min || est.Max != tc.max {
			t.Errorf("newEstimate(%v) bounds = %d-%d, want %d-%d", tc.typical, est.Min, est.Max, tc.min, tc.max)
		}
		if est.Display != tc.display {
			t.Errorf("newEstimate(%v) display = %q, want %q", tc.typical, est.Display, tc.display)
		}
		if est.Conservative != tc.conservative {
			t.Errorf("newEstimate(%v) conservative = %v, want %v", tc.typical, est.Conservative, tc.conservative)
		}
	}
}

func TestCalculationDayLabels(t *testing.T) {
	cases := []struct {
		useTuesday bool
		dayOffset  int
		want       string
	}{
		{false, 0, "next Monday"},
		{true, 0, "next Tuesday"},
		{false, 2, "future Monday (2 days ahead)"},
		{true, -1, "past Tuesday (1 days ago)"},
	}
	for _, tc := range cases {
		if got := calculationDay(tc.useTuesday, tc.dayOffset); got != tc.want {
			t.Errorf("calculationDay(%t, %d) = %q, want %q", tc.useTuesday, tc.dayOffset, got, tc.want)
		}
	}
}
