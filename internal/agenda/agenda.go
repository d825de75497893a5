// Package agenda implements the layout and interaction engine behind a day's
// hour-by-hour agenda: measuring hour rows into timeslots, mapping pixels to
// hours, placing overlapping events side by side, dragging and resizing
// events, and accounting for free time.
//
// An Agenda is not safe for concurrent use; hosts serialize access.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrDuplicateEvent      = errors.New("duplicate event id")
	ErrNonPositiveDuration = errors.New("event must end after it starts")
	ErrNoTimeslots         = errors.New("agenda has no timeslots")
	ErrEdgeDisabled        = errors.New("resize edge disabled")
)

// Options tunes an agenda. Zero values fall back to the package defaults.
type Options struct {
	ElevationStep  float64
	ResizePad      float64
	AllowTopResize bool

	// Observer, if set, is told about recomputes and gestures.
	Observer Observer
}

// Observer receives engine activity, e.g. for metrics.
type Observer interface {
	Recomputed(day string, placements int)
	Mutated(day string, gesture string)
	Rejected(day string, err error)
}

// Agenda is the state of one day: its timeslots, its events and the view
// state of every event card.
type Agenda struct {
	name string
	day  time.Time
	opts Options

	timeslots []model.Timeslot
	topOffset float64

	events []model.Event
	cards  map[string]*Card

	summary map[string]int
}

// New creates an empty agenda for the day containing day.
func New(name string, day time.Time, opts Options) *Agenda {
	if opts.ElevationStep == 0 {
		opts.ElevationStep = DefaultElevationStep
	}
	if opts.ResizePad == 0 {
		opts.ResizePad = DefaultResizePad
	}
	a := &Agenda{
		name:  name,
		day:   StartOfDay(day),
		opts:  opts,
		cards: make(map[string]*Card),
	}
	a.Recompute()
	return a
}

func (a *Agenda) Name() string       { return a.name }
func (a *Agenda) Day() time.Time     { return a.day }
func (a *Agenda) TopOffset() float64 { return a.topOffset }

// Timeslots returns a copy of the measured timeslots.
func (a *Agenda) Timeslots() []model.Timeslot {
	return append([]model.Timeslot(nil), a.timeslots...)
}

// Events returns a copy of the events in collection order.
func (a *Agenda) Events() []model.Event {
	return append([]model.Event(nil), a.events...)
}

// Event looks an event up by id.
func (a *Agenda) Event(id string) (model.Event, bool) {
	if i := a.indexOf(id); i >= 0 {
		return a.events[i], true
	}
	return model.Event{}, false
}

// Card returns the view state of an event's card.
func (a *Agenda) Card(id string) (*Card, bool) {
	c, ok := a.cards[id]
	return c, ok
}

// Free is the number of unscheduled hours of the day.
func (a *Agenda) Free() int {
	return a.summary[FreeKey]
}

// Summary returns hours per description plus FreeKey.
func (a *Agenda) Summary() map[string]int {
	out := make(map[string]int, len(a.summary))
	for k, v := range a.summary {
		out[k] = v
	}
	return out
}

// Mapper returns a coordinate mapper over the current timeslots.
func (a *Agenda) Mapper() Mapper {
	return Mapper{Timeslots: a.timeslots, TopOffset: a.topOffset}
}

// Position is the agenda-relative extent of an event derived from its
// boundaries.
func (a *Agenda) Position(e model.Event) model.Position {
	return a.Mapper().HourRangeToPixels(e.Start, e.End)
}

// Add appends an event.
func (a *Agenda) Add(e model.Event) error {
	if a.indexOf(e.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, e.ID)
	}
	a.events = append(a.events, e)
	card := newCard(e.ID)
	card.place(a.Position(e))
	a.cards[e.ID] = card
	a.Recompute()
	return nil
}

// SetEvents replaces the whole collection. Cards of events that survive
// keep their view state.
func (a *Agenda) SetEvents(events []model.Event) error {
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if seen[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEvent, e.ID)
		}
		seen[e.ID] = true
	}

	a.events = append([]model.Event(nil), events...)
	for id := range a.cards {
		if !seen[id] {
			delete(a.cards, id)
		}
	}
	for _, e := range a.events {
		if _, ok := a.cards[e.ID]; !ok {
			a.cards[e.ID] = newCard(e.ID)
		}
	}
	a.Recompute()
	a.Reposition()
	return nil
}

// SetTopOffset records where the agenda container starts on the hosting
// surface and re-positions idle cards.
func (a *Agenda) SetTopOffset(offset float64) {
	a.topOffset = offset
	a.Reposition()
}

// SetRows rebuilds the timeslots from freshly measured rows, then re-runs
// layout and re-positions idle cards.
func (a *Agenda) SetRows(rows []model.Row) error {
	timeslots, err := BuildTimeslots(a.day, rows)
	if err != nil {
		return err
	}
	a.timeslots = timeslots
	a.Recompute()
	a.Reposition()
	return nil
}

// Measure asks the provider for the rendered rows and applies them.
func (a *Agenda) Measure(ctx context.Context, provider RowProvider) error {
	rows, err := provider.Rows(ctx)
	if err != nil {
		return fmt.Errorf("measure rows: %w", err)
	}
	if err := a.SetRows(rows); err != nil {
		return fmt.Errorf("measure rows: %w", err)
	}
	appLog.Debug("agenda measured", "day", a.name, "rows", len(rows))
	return nil
}

// UpdateEvent replaces the boundaries of an event and re-runs layout.
// Edits that would leave the event without a positive duration are
// rejected and leave the event unchanged.
func (a *Agenda) UpdateEvent(id string, start, end time.Time) error {
	i := a.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if !end.After(start) {
		return ErrNonPositiveDuration
	}

	a.events[i].Start = start
	a.events[i].End = end
	a.Recompute()
	return nil
}

// ApplyLayout writes placements back onto events by id. Unknown ids are
// ignored; events without a placement keep their values.
func (a *Agenda) ApplyLayout(placements []model.Placement) {
	for _, p := range placements {
		i := a.indexOf(p.ID)
		if i < 0 {
			continue
		}
		a.events[i].Left = p.Left
		a.events[i].Right = p.Right
		a.events[i].ZIndex = p.ZIndex
	}
}

// Recompute re-runs the overlap layout and the free-time summary. It must
// follow every change to the events or the timeslots.
func (a *Agenda) Recompute() {
	placements := Layout(a.timeslots, a.events, a.opts.ElevationStep)
	a.ApplyLayout(placements)
	a.summary = Summarize(a.day, a.events)

	if a.opts.Observer != nil {
		a.opts.Observer.Recomputed(a.name, len(placements))
	}
}

// Reposition re-derives top and height of every idle card from its event.
func (a *Agenda) Reposition() {
	m := a.Mapper()
	for _, e := range a.events {
		card := a.cards[e.ID]
		if card == nil || card.Active() {
			continue
		}
		card.place(m.HourRangeToPixels(e.Start, e.End))
	}
}

func (a *Agenda) indexOf(id string) int {
	for i := range a.events {
		if a.events[i].ID == id {
			return i
		}
	}
	return -1
}
