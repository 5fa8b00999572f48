package models

import "testing"

func TestTravelSlotSet(t *testing.T) {
	want := [5]TravelSlot{
		"travel_time_830am",
		"travel_time_930am",
		"travel_time_midday",
		"travel_time_630pm",
		"travel_time_730pm",
	}
	if AllTravelSlots != want {
		t.Errorf("AllTravelSlots = %v, want %v", AllTravelSlots, want)
	}
}

func TestFallbackMultipliers(t *testing.T) {
	cases := map[TravelSlot]float64{
		Slot830AM:  1.3,
		Slot930AM:  1.1,
		SlotMidday: 1.0,
		Slot630PM:  1.4,
		Slot730PM:  1.2,
	}
	for slot, want := range cases {
		if got := slot.FallbackMultiplier(); got != want {
			t.Errorf("%s.FallbackMultiplier() = %v, want %v", slot, got, want)
		}
	}
}

func TestTravelTimeFieldCoversAllSlots(t *testing.T) {
	seen := map[string]bool{}
	for _, slot := range AllTravelSlots {
		field := TravelTimeField(slot)
		if field == "" {
			t.Errorf("TravelTimeField(%s) = empty", slot)
		}
		if seen[field] {
			t.Errorf("duplicate field %q", field)
		}
		seen[field] = true
	}
	if got := TravelTimeField("travel_time_midnight"); got != "" {
		t.Errorf("TravelTimeField(unknown) = %q, want empty", got)
	}
}

func TestConservativeTimes(t *testing.T) {
	report := &TravelTimeReport{
		Estimates: map[TravelSlot]*SlotEstimate{
			Slot830AM:  {Conservative: 45},
			SlotMidday: {Conservative: 30},
		},
	}

	times := report.ConservativeTimes()
	if len(times) != 5 {
		t.Fatalf("got %d entries, want one per slot", len(times))
	}
	if v := times[Slot830AM]; v == nil || *v != 45 {
		t.Errorf("830am = %v, want 45", v)
	}
	if times[Slot930AM] != nil {
		t.Errorf("930am = %v, want nil for absent slot", *times[Slot930AM])
	}
}

func TestHasAnomalies(t *testing.T) {
	report := &TravelTimeReport{
		Estimates: map[TravelSlot]*SlotEstimate{
			Slot830AM: {Conservative: 45},
		},
	}
	if report.HasAnomalies() {
		t.Error("HasAnomalies() = true with no flags")
	}
	report.Estimates[Slot830AM].Anomaly = true
	if !report.HasAnomalies() {
		t.Error("HasAnomalies() = false with a flagged slot")
	}
}
