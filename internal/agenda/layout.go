package agenda

import (
	"math"

	"agendacal/internal/model"
)

// DefaultElevationStep is the horizontal stagger, in percentage points,
// added for every hour at which events start while others are still running.
// 0.5 suits wide screens, 2 suits narrow ones.
const DefaultElevationStep = 2.0

// Layout assigns left/right insets and stacking order to every event that
// starts on one of the given timeslots.
//
// It walks the timeslots once in hour order. Events starting together split
// the width evenly; events starting while others are ongoing are shifted
// right by an accumulated elevation, which resets once nothing is ongoing.
// Events that start on no timeslot get no placement.
func Layout(timeslots []model.Timeslot, events []model.Event, step float64) []model.Placement {
	placements := make([]model.Placement, 0, len(events))

	elevation := 0.0
	ongoing := 0

	for _, ts := range timeslots {
		starting := make([]model.Event, 0)
		for _, e := range events {
			if e.Start.Equal(ts.Date) {
				starting = append(starting, e)
			}
		}

		switch {
		case len(starting) == 1:
			placements = append(placements, model.Placement{
				ID:     starting[0].ID,
				Left:   elevation,
				Right:  0,
				ZIndex: ts.Hour,
			})
		case len(starting) > 1:
			left := elevation
			width := ceilHundredth(100/float64(len(starting))) - elevation
			right := ceilHundredth(100 - left - width)
			for _, e := range starting {
				placements = append(placements, model.Placement{
					ID:     e.ID,
					Left:   left,
					Right:  right,
					ZIndex: ts.Hour,
				})
				left += width + elevation
				right = ceilHundredth(100 - left - width)
			}
		}

		// An event ending "at 4" occupies its rows until 3:59, so it leaves
		// the ongoing set on the 3 o'clock row.
		ending := 0
		for _, e := range events {
			if e.End.Hour()-1 == ts.Hour {
				ending++
			}
		}

		ongoing += len(starting) - ending
		if ongoing == 0 {
			elevation = 0
		}
		if len(starting) > 0 {
			elevation += step
		}
	}

	return placements
}

// ceilHundredth rounds up to two decimals. Values that are already on a
// hundredth boundary (within float noise) are left alone.
func ceilHundredth(v float64) float64 {
	return math.Ceil(v*100-1e-9) / 100
}
