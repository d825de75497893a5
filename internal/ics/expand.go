package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// Window selects the occurrences that become agenda events.
type Window struct {
	// Start / End bound the window; occurrences overlapping it are kept.
	Start time.Time
	End   time.Time

	// Location is the zone events are converted to and snapped in. Nil means
	// time.Local.
	Location *time.Location

	// IncludeAllDay keeps all-day events as midnight-to-midnight spans.
	IncludeAllDay bool

	// MaxOccurrencesPerEvent caps RRULE expansion per UID.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds the agenda events and the UIDs whose expansion hit the
// cap.
type ExpandResult struct {
	Events    []model.Event
	Truncated []string
}

// Expand turns parsed VEVENTs into agenda events overlapping w. RRULEs are
// expanded with EXDATEs removed and RECURRENCE-ID overrides applied.
//
// The agenda works on whole hours: starts are floored and ends ceiled to
// the hour in w.Location, and an event left without duration gets one hour.
// Results are ordered by start, then id.
func Expand(events []ParsedEvent, w Window) (ExpandResult, error) {
	var result ExpandResult

	if w.End.Before(w.Start) {
		return result, errors.New("expand: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxOccurrencesPerEvent <= 0 {
		w.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		key := ev.Source.ID + "\x00" + ev.UID
		if ev.IsOverride() {
			overrides[key] = append(overrides[key], ev)
		} else {
			bases[key] = append(bases[key], ev)
		}
	}

	out := make([]model.Event, 0)
	for key, evs := range bases {
		for _, ev := range evs {
			if ev.AllDay && !w.IncludeAllDay {
				continue
			}
			occ, hitCap := expandEvent(ev, overrides[key], w)
			if hitCap {
				result.Truncated = append(result.Truncated, ev.UID)
				appLog.Error("expand: occurrences truncated", errors.New("max occurrences reached"),
					"uid", ev.UID, "cap", w.MaxOccurrencesPerEvent)
			}
			out = append(out, occ...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})

	result.Events = out
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, w Window) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, w.Start, w.End) {
			return nil, false
		}
		return []model.Event{toEvent(eventID(ev, nil), ev.Summary, ev.Start, ev.End, w.Location)}, false
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the duration so instances already running
	// when the window opens are kept.
	dur := ev.End.Sub(ev.Start)
	from := w.Start.Add(-dur).In(ev.Start.Location())
	to := w.End.In(ev.Start.Location())

	starts := set.Between(from, to, true)
	hitCap := false
	if len(starts) > w.MaxOccurrencesPerEvent {
		starts = starts[:w.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		inst, start, end := ev, s, s.Add(dur)
		if o, ok := findOverride(overrides, s); ok {
			inst, start, end = o, o.Start, o.End
		}
		if !overlaps(start, end, w.Start, w.End) {
			continue
		}
		out = append(out, toEvent(eventID(ev, &s), inst.Summary, start, end, w.Location))
	}
	return out, hitCap
}

func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// eventID qualifies the UID with the source and, for recurring instances,
// the original instance start so ids stay unique within a day.
func eventID(ev ParsedEvent, instance *time.Time) string {
	id := ev.UID
	if ev.Source.ID != "" {
		id = ev.Source.ID + ":" + id
	}
	if instance != nil {
		id = fmt.Sprintf("%s@%s", id, instance.UTC().Format("20060102T150405Z"))
	}
	return id
}

// toEvent snaps an occurrence onto the hour grid in loc.
func toEvent(id, summary string, start, end time.Time, loc *time.Location) model.Event {
	s := floorHour(start.In(loc))
	e := ceilHour(end.In(loc))
	if !e.After(s) {
		e = s.Add(time.Hour)
	}
	return model.Event{
		ID:          id,
		Description: summary,
		Start:       s,
		End:         e,
	}
}

func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func ceilHour(t time.Time) time.Time {
	f := floorHour(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(time.Hour)
}

// overlaps treats a zero-length a as the instant aStart.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
