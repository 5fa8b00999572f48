package traveltime

import (
	"time"

	"github.com/outrigger999/rental-recon/models"
)

// departureMoment computes the concrete departure time for a slot: the next
// future occurrence of the target weekday (never today, even if today matches),
// shifted by dayOffset days, at the slot's fixed hour and minute with zero
// seconds.
func (s *DefaultService) departureMoment(slot models.TravelSlot, useTuesday bool, dayOffset int) time.Time {
	now := s.now()

	target := time.Monday
	if useTuesday {
		target = time.Tuesday
	}

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}

	day := now.AddDate(0, 0, daysAhead+dayOffset)
	hour, minute := slot.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
