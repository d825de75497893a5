package model

import "time"

// Event is a scheduled activity shown on a day's agenda.
//
// Start/End bound the event at hour precision; End may fall on the following
// day for overnight spans. Left/Right/ZIndex are written by the overlap
// layout pass only.
type Event struct {
	ID          string    `json:"id" yaml:"id"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	Description string    `json:"description" yaml:"description"`

	// Left and Right are percentage insets (0–100) from the container edges.
	// Width is implied: 100 - Left - Right.
	Left   float64 `json:"left" yaml:"-"`
	Right  float64 `json:"right" yaml:"-"`
	ZIndex int     `json:"z_index" yaml:"-"`
}

// Timeslot is one measured hour row of a day's agenda.
type Timeslot struct {
	Hour int       `json:"hour"` // 0 - 23
	Date time.Time `json:"date"` // the agenda day at Hour:00

	// Top / Bottom are in the hosting surface's coordinate space, not
	// corrected for the agenda's own offset.
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Row is the rendered rectangle of one hour row as reported by a host.
// Hour is nil when the row carries no hour tag.
type Row struct {
	Hour   *int    `json:"hour"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Position is an event's vertical extent relative to the agenda container.
type Position struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Height is Bottom - Top.
func (p Position) Height() float64 {
	return p.Bottom - p.Top
}

// Placement is the horizontal layout computed for a single event.
type Placement struct {
	ID     string  `json:"id"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	ZIndex int     `json:"z_index"`
}
