package traveltime

import (
	"sort"

	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"

	"go.uber.org/zap"
)

const anomalyNote = "Unusually high traffic detected - possibly an incident"

// Only the morning slots are checked for incidents; afternoon congestion is
// too variable for the 2x-median rule to be meaningful.
var morningSlots = [2]models.TravelSlot{models.Slot830AM, models.Slot930AM}

// flagAnomalies marks morning slots whose conservative estimate exceeds twice
// the median across all computed slots. The median is the lower-middle element
// of the ascending sort. The explanatory note is attached only on the default
// query (next Monday, no offset); re-runs against Tuesday or shifted days are
// already follow-ups on a suspected incident.
func flagAnomalies(estimates map[models.TravelSlot]*models.SlotEstimate, attachNote bool) {
	times := make([]float64, 0, len(estimates))
	for _, est := range estimates {
		times = append(times, est.Conservative)
	}
	if len(times) < 3 {
		return
	}
	sort.Float64s(times)
	median := times[len(times)/2]

	for _, slot := range morningSlots {
		est := estimates[slot]
		if est == nil {
			continue
		}
		if est.Conservative > 2*median {
			utils.GetLogger().Warn("Travel time anomaly detected",
				zap.String("slot", string(slot)),
				zap.Float64("conservative", est.Conservative),
				zap.Float64("median", median))
			est.Anomaly = true
			if attachNote {
				est.Note = anomalyNote
			}
		}
	}
}
