package models

// TravelSlot identifies one of the five fixed departure times a commute
// estimate is computed for. The set is fixed; slots are never created
// dynamically, which keeps typos out of stored travel time fields.
type TravelSlot string

const (
	Slot830AM  TravelSlot = "travel_time_830am"
	Slot930AM  TravelSlot = "travel_time_930am"
	SlotMidday TravelSlot = "travel_time_midday"
	Slot630PM  TravelSlot = "travel_time_630pm"
	Slot730PM  TravelSlot = "travel_time_730pm"
)

// AllTravelSlots is the complete slot set, in display order.
var AllTravelSlots = [5]TravelSlot{Slot830AM, Slot930AM, SlotMidday, Slot630PM, Slot730PM}

// Clock returns the slot's fixed departure hour and minute (24-hour).
func (s TravelSlot) Clock() (hour, minute int) {
	switch s {
	case Slot830AM:
		return 8, 30
	case Slot930AM:
		return 9, 30
	case SlotMidday:
		return 12, 0
	case Slot630PM:
		return 18, 30
	case Slot730PM:
		return 19, 30
	}
	return 0, 0
}

// FallbackMultiplier returns the congestion multiplier applied to the
// straight-line base estimate when no routing API key is configured.
func (s TravelSlot) FallbackMultiplier() float64 {
	switch s {
	case Slot830AM:
		return 1.3 // rush hour
	case Slot930AM:
		return 1.1 // light traffic
	case SlotMidday:
		return 1.0
	case Slot630PM:
		return 1.4 // heavy rush hour
	case Slot730PM:
		return 1.2 // evening traffic
	}
	return 1.0
}

// SlotEstimate is a single slot's travel time estimate. Typical comes from
// the routing API's best-guess duration; Min/Max are derived bounds and
// Conservative is the value persisted to the property record.
type SlotEstimate struct {
	Typical      float64 `json:"typical"`
	Min          int     `json:"min"`
	Max          int     `json:"max"`
	Display      string  `json:"display"`
	Conservative float64 `json:"conservative"`
	Anomaly      bool    `json:"anomaly,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// TravelTimeReport is the result of one estimation call. A slot missing from
// Estimates produced no usable value; callers must tolerate any subset being
// absent.
type TravelTimeReport struct {
	Estimates            map[TravelSlot]*SlotEstimate `json:"estimates"`
	CalculationDay       string                       `json:"calculation_day"`
	CalculationTimestamp int64                        `json:"calculation_timestamp"`
}

// HasAnomalies reports whether any slot in the report carries an anomaly flag.
func (r *TravelTimeReport) HasAnomalies() bool {
	for _, slot := range AllTravelSlots {
		if est := r.Estimates[slot]; est != nil && est.Anomaly {
			return true
		}
	}
	return false
}

// ConservativeTimes returns the per-slot values to persist; absent slots map
// to nil so existing stored values can be cleared.
func (r *TravelTimeReport) ConservativeTimes() map[TravelSlot]*float64 {
	times := make(map[TravelSlot]*float64, len(AllTravelSlots))
	for _, slot := range AllTravelSlots {
		if est := r.Estimates[slot]; est != nil {
			v := est.Conservative
			times[slot] = &v
		} else {
			times[slot] = nil
		}
	}
	return times
}
