package agenda

import (
	"time"

	"agendacal/internal/model"
)

// FreeKey is the summary entry holding the free hours of the day.
const FreeKey = "Free"

// Summarize clips every event to the day containing day and accumulates
// whole hours per description. The returned map also holds FreeKey,
// 24 minus everything used.
//
// Overlapping events are counted twice, so Free may go negative.
func Summarize(day time.Time, events []model.Event) map[string]int {
	windowStart := StartOfDay(day)
	windowEnd := windowStart.AddDate(0, 0, 1)

	summary := make(map[string]int)
	used := 0
	for _, e := range events {
		effectiveStart := e.Start
		if windowStart.After(effectiveStart) {
			effectiveStart = windowStart
		}
		effectiveEnd := e.End
		if windowEnd.Before(effectiveEnd) {
			effectiveEnd = windowEnd
		}

		hours := 0
		if effectiveEnd.After(effectiveStart) {
			hours = int(effectiveEnd.Sub(effectiveStart) / time.Hour)
		}
		summary[e.Description] += hours
		used += hours
	}

	summary[FreeKey] = HoursPerDay - used
	return summary
}

// FreeTime returns the free hours of the day containing day.
func FreeTime(day time.Time, events []model.Event) int {
	return Summarize(day, events)[FreeKey]
}
