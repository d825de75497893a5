package agenda

import (
	"errors"
	"fmt"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Phase is the stage of a pointer gesture.
type Phase string

const (
	PhaseDown Phase = "down"
	PhaseMove Phase = "move"
	PhaseUp   Phase = "up"
)

// PointerEvent is one step of a pointer gesture on an event card.
//
// ClientY is absolute on the hosting surface. Clicks is the press count
// reported by the host (2 for a double click). ResizeFrom is set when the
// press hits a resize handle instead of the card body.
type PointerEvent struct {
	Phase      Phase   `json:"phase"`
	ClientY    float64 `json:"client_y"`
	PointerID  int     `json:"pointer_id"`
	Clicks     int     `json:"clicks,omitempty"`
	ResizeFrom Edge    `json:"resize_from,omitempty"`
}

func (a *Agenda) drag() DragController {
	return DragController{Mapper: a.Mapper(), Store: a}
}

func (a *Agenda) resize() ResizeController {
	return ResizeController{Mapper: a.Mapper(), Store: a, Pad: a.opts.ResizePad}
}

// HandlePointer feeds one pointer event for the card of event id through
// the drag or resize state machine.
//
// A press while another gesture is in flight is ignored. Boundary edits
// rejected by UpdateEvent do not abort the gesture.
func (a *Agenda) HandlePointer(id string, ev PointerEvent) error {
	card, ok := a.cards[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if len(a.timeslots) == 0 {
		return ErrNoTimeslots
	}

	switch ev.Phase {
	case PhaseDown:
		if card.Active() {
			return nil
		}
		switch ev.ResizeFrom {
		case "":
			a.drag().Start(card, ev.ClientY, ev.Clicks)
		case EdgeBottom:
			a.resize().Start(card, EdgeBottom, ev.PointerID)
		case EdgeTop:
			if !a.opts.AllowTopResize {
				return fmt.Errorf("%w: %s", ErrEdgeDisabled, ev.ResizeFrom)
			}
			a.resize().Start(card, EdgeTop, ev.PointerID)
		default:
			return fmt.Errorf("%w: %s", ErrEdgeDisabled, ev.ResizeFrom)
		}
		return nil

	case PhaseMove:
		e, _ := a.Event(id)
		var err error
		switch card.Gesture.(type) {
		case Dragging:
			err = a.drag().Move(card, e, ev.ClientY)
		case Resizing:
			err = a.resize().Move(card, e, ev.ClientY, ev.PointerID)
		default:
			return nil
		}
		return a.observeMutation(e, card, err)

	case PhaseUp:
		e, _ := a.Event(id)
		switch card.Gesture.(type) {
		case Dragging:
			a.drag().End(card, e)
		case Resizing:
			a.resize().End(card, e, ev.PointerID)
		}
		return nil
	}

	return fmt.Errorf("unknown pointer phase %q", ev.Phase)
}

// Cancel ends any gesture on the card of event id as if the pointer had been
// released. Boundary edits already made are kept.
func (a *Agenda) Cancel(id string) error {
	card, ok := a.cards[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	if !card.Active() {
		return nil
	}
	e, _ := a.Event(id)
	card.Gesture = Idle{}
	card.place(a.Position(e))
	return nil
}

func (a *Agenda) observeMutation(before model.Event, card *Card, err error) error {
	obs := a.opts.Observer
	if errors.Is(err, ErrNonPositiveDuration) {
		appLog.Debug("agenda edit rejected", "day", a.name, "id", before.ID, "gesture", card.Gesture.String())
		if obs != nil {
			obs.Rejected(a.name, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	after, _ := a.Event(before.ID)
	if obs != nil && (!after.Start.Equal(before.Start) || !after.End.Equal(before.End)) {
		obs.Mutated(a.name, card.Gesture.String())
	}
	return nil
}
