package agenda

import (
	"time"

	"agendacal/internal/model"
)

// Mapper translates between agenda-relative pixels and hours of the day.
//
// Timeslot bounds are in the hosting surface's absolute space; TopOffset is
// the agenda container's own top in that space.
type Mapper struct {
	Timeslots []model.Timeslot
	TopOffset float64
}

// PixelToHour returns the hour whose row contains the agenda-relative y.
// ok is false when y lies outside every row.
func (m Mapper) PixelToHour(y float64) (hour int, ok bool) {
	ts, ok := m.slotAt(y)
	if !ok {
		return 0, false
	}
	return ts.Hour, true
}

func (m Mapper) slotAt(y float64) (model.Timeslot, bool) {
	abs := y + m.TopOffset
	for _, ts := range m.Timeslots {
		if ts.Top <= abs && ts.Bottom >= abs {
			return ts, true
		}
	}
	return model.Timeslot{}, false
}

// HourRangeToPixels returns the agenda-relative extent of [start, end).
//
// Rows are matched by exact date, so spans crossing midnight resolve
// correctly. An event already running at the start of the day is pinned to
// the first row, one running past the end of the day to the last row's
// bottom. Anything else unresolved degrades to a zero-height strip at
// TopOffset.
func (m Mapper) HourRangeToPixels(start, end time.Time) model.Position {
	first, hasFirst := m.slotFor(start)
	second, hasSecond := m.slotFor(end)

	if n := len(m.Timeslots); n > 0 {
		head, tail := m.Timeslots[0], m.Timeslots[n-1]

		if !hasFirst && start.Before(head.Date) {
			// started yesterday
			first, hasFirst = head, true
		}

		if hasFirst && !hasSecond && end.After(tail.Date) {
			// ends tomorrow
			return model.Position{
				Top:    first.Top - m.TopOffset,
				Bottom: tail.Bottom - m.TopOffset,
			}
		}
	}

	if !hasFirst || !hasSecond {
		return model.Position{Top: m.TopOffset, Bottom: m.TopOffset}
	}

	return model.Position{
		Top:    first.Top - m.TopOffset,
		Bottom: second.Top - m.TopOffset,
	}
}

func (m Mapper) slotFor(t time.Time) (model.Timeslot, bool) {
	for _, ts := range m.Timeslots {
		if ts.Date.Equal(t) {
			return ts, true
		}
	}
	return model.Timeslot{}, false
}
