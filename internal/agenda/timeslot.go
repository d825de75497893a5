package agenda

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agendacal/internal/model"
)

// HoursPerDay is the number of hour rows an agenda renders.
const HoursPerDay = 24

// RowProvider reports the rendered rectangles of a day's hour rows. It is
// implemented by the rendering layer (browser, terminal, HTTP client); the
// agenda never inspects a rendering tree itself.
type RowProvider interface {
	Rows(ctx context.Context) ([]model.Row, error)
}

// RowsFunc adapts a plain function to RowProvider.
type RowsFunc func(ctx context.Context) ([]model.Row, error)

func (f RowsFunc) Rows(ctx context.Context) ([]model.Row, error) {
	return f(ctx)
}

// MissingRowDataError is returned when a rendered row carries no hour tag.
// Layout cannot proceed without it.
type MissingRowDataError struct {
	Index int // position of the offending row in the input
}

func (e *MissingRowDataError) Error() string {
	return fmt.Sprintf("missing timeslot data: row %d has no hour tag", e.Index)
}

// BuildTimeslots turns measured hour rows into timeslots for day, ordered by
// ascending hour. Top/Bottom are copied from the row rectangles as-is.
func BuildTimeslots(day time.Time, rows []model.Row) ([]model.Timeslot, error) {
	midnight := StartOfDay(day)

	out := make([]model.Timeslot, 0, len(rows))
	for i, r := range rows {
		if r.Hour == nil {
			return nil, &MissingRowDataError{Index: i}
		}
		hour := *r.Hour
		out = append(out, model.Timeslot{
			Hour:   hour,
			Date:   atHour(midnight, hour),
			Top:    r.Top,
			Bottom: r.Bottom,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

// UniformRows produces 24 contiguous rows of rowHeight starting at top.
// Terminal and test hosts use it where there is nothing to measure.
func UniformRows(top, rowHeight float64) []model.Row {
	rows := make([]model.Row, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		hour := h
		rowTop := top + float64(h)*rowHeight
		rows = append(rows, model.Row{Hour: &hour, Top: rowTop, Bottom: rowTop + rowHeight})
	}
	return rows
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atHour returns midnight's day at the given hour. Hours past 23 roll into
// the next day.
func atHour(midnight time.Time, hour int) time.Time {
	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), hour, 0, 0, 0, midnight.Location())
}
