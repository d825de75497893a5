package agenda

import "agendacal/internal/model"

// Edge names the side of a card a resize gesture grabs.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// Gesture is the interaction state of a card: Idle, Dragging or Resizing.
type Gesture interface {
	gesture()
	String() string
}

// Idle means no pointer gesture is in flight.
type Idle struct{}

// Dragging tracks a move gesture. OriginY is the absolute pointer y at
// press time, LastTop the card's agenda-relative top at that moment.
type Dragging struct {
	OriginY float64
	LastTop float64
}

// Resizing tracks a resize gesture bound to one pointer. OriginY is the
// absolute position of the card edge opposite to Edge.
type Resizing struct {
	Edge      Edge
	OriginY   float64
	PointerID int
}

func (Idle) gesture()     {}
func (Dragging) gesture() {}
func (Resizing) gesture() {}

func (Idle) String() string     { return "idle" }
func (Dragging) String() string { return "dragging" }
func (Resizing) String() string { return "resizing" }

// ActiveZIndex is the stacking order of a card while it is being dragged or
// resized.
const ActiveZIndex = 999

// Card is the per-event view state kept by an agenda.
type Card struct {
	EventID string  `json:"event_id"`
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`

	Gesture    Gesture `json:"-"`
	DetailOpen bool    `json:"detail_open"`
}

func newCard(id string) *Card {
	return &Card{EventID: id, Gesture: Idle{}}
}

// Active reports whether a drag or resize is in flight.
func (c *Card) Active() bool {
	_, idle := c.Gesture.(Idle)
	return !idle
}

// ZIndex is the stacking order to render the card with.
func (c *Card) ZIndex(e model.Event) int {
	if c.Active() {
		return ActiveZIndex
	}
	return e.ZIndex
}

func (c *Card) place(p model.Position) {
	c.Top = p.Top
	c.Height = p.Height()
}
