package agenda

import (
	"time"

	"agendacal/internal/model"
)

// DefaultResizePad keeps the card edge under the cursor while resizing.
const DefaultResizePad = 15.0

// ResizeController stretches a card from one edge and moves the matching
// event boundary along the hour grid.
type ResizeController struct {
	Mapper Mapper
	Store  Mutator
	Pad    float64
}

// Start captures pointerID and records the fixed edge of the card.
func (r ResizeController) Start(card *Card, edge Edge, pointerID int) {
	origin := card.Top + r.Mapper.TopOffset
	if edge == EdgeTop {
		origin += card.Height
	}
	card.Gesture = Resizing{Edge: edge, OriginY: origin, PointerID: pointerID}
}

// Move resizes the card to absolute pointer y. The visual height follows the
// pointer freely; the event boundary only changes when the moving edge lands
// on another hour row.
func (r ResizeController) Move(card *Card, e model.Event, y float64, pointerID int) error {
	g, ok := card.Gesture.(Resizing)
	if !ok || g.PointerID != pointerID {
		return nil
	}

	if g.Edge == EdgeTop {
		card.Height = g.OriginY - y + r.Pad
		card.Top = g.OriginY - card.Height - r.Mapper.TopOffset

		slot, ok := r.Mapper.slotAt(card.Top)
		if !ok || slot.Date.Equal(e.Start) {
			return nil
		}
		return r.Store.UpdateEvent(e.ID, slot.Date, e.End)
	}

	card.Height = y - g.OriginY + r.Pad

	// An event shown down to row h ends at h+1 (it runs until h:59).
	slot, ok := r.Mapper.slotAt(card.Top + card.Height)
	if !ok {
		return nil
	}
	end := slot.Date.Add(time.Hour)
	if end.Equal(e.End) {
		return nil
	}
	return r.Store.UpdateEvent(e.ID, e.Start, end)
}

// End releases the pointer and re-derives the card from the event, dropping
// the free-form height used during the gesture.
func (r ResizeController) End(card *Card, e model.Event, pointerID int) {
	g, ok := card.Gesture.(Resizing)
	if !ok || g.PointerID != pointerID {
		return
	}
	card.Gesture = Idle{}
	card.place(r.Mapper.HourRangeToPixels(e.Start, e.End))
}
