package agenda

import (
	"time"

	"agendacal/internal/model"
)

// Mutator accepts new boundaries for an event. The event store replaces the
// event in its collection and re-runs layout.
type Mutator interface {
	UpdateEvent(id string, start, end time.Time) error
}

// DragController moves a card and the event behind it along the hour grid.
type DragController struct {
	Mapper Mapper
	Store  Mutator
}

// Start begins a drag at absolute pointer y. A double press toggles the
// card's detail view instead.
func (d DragController) Start(card *Card, y float64, clicks int) {
	if clicks >= 2 {
		card.DetailOpen = !card.DetailOpen
		return
	}
	card.Gesture = Dragging{OriginY: y, LastTop: card.Top}
}

// Move follows the pointer. Once the card's top lands on another hour row
// both boundaries shift by the same amount, keeping the duration.
func (d DragController) Move(card *Card, e model.Event, y float64) error {
	g, ok := card.Gesture.(Dragging)
	if !ok {
		return nil
	}

	candidate := y - g.OriginY + g.LastTop
	card.Top = candidate

	slot, ok := d.Mapper.slotAt(candidate)
	if !ok || slot.Date.Equal(e.Start) {
		return nil
	}

	delta := slot.Date.Sub(e.Start)
	return d.Store.UpdateEvent(e.ID, e.Start.Add(delta), e.End.Add(delta))
}

// End finishes the drag and snaps the card back onto the grid from the
// event's current boundaries.
func (d DragController) End(card *Card, e model.Event) {
	if _, ok := card.Gesture.(Dragging); !ok {
		return
	}
	card.Gesture = Idle{}
	card.place(d.Mapper.HourRangeToPixels(e.Start, e.End))
}
