package tui

import (
	"math"
	"sort"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

const (
	// headerLines sit above the hour grid; hour h is drawn on terminal line
	// headerLines+h.
	headerLines = 2
	// gutter holds the "HH:00 " hour labels.
	gutter = 6

	// ResizePad keeps a dragged card edge inside the pointer's cell.
	ResizePad = 0.25

	// rowInset pulls each row's bottom off the next row's top so that a
	// whole-cell position belongs to exactly one hour.
	rowInset = 0.001
)

// Rows returns the terminal geometry of the hour grid: one line per hour,
// starting below the header.
func Rows() []model.Row {
	rows := agenda.UniformRows(headerLines, 1)
	for i := range rows {
		rows[i].Bottom -= rowInset
	}
	return rows
}

// cellY is the pointer position reported for a terminal line: its center.
func cellY(line int) float64 {
	return float64(line) + 0.5
}

// box is a card's footprint in terminal cells; x1 and y1 are exclusive.
type box struct {
	id             string
	x0, x1, y0, y1 int
	stack          int
}

func (b box) contains(x, y int) bool {
	return x >= b.x0 && x < b.x1 && y >= b.y0 && y < b.y1
}

// boxes lays every card out on a grid width cells wide (gutter excluded)
// and returns them bottom-most first.
func boxes(a *agenda.Agenda, width int) []box {
	if width < 1 {
		width = 1
	}
	var out []box
	for _, e := range a.Events() {
		card, ok := a.Card(e.ID)
		if !ok || card.Height <= 0 {
			continue
		}
		x0 := gutter + int(math.Round(e.Left*float64(width)/100))
		x1 := gutter + width - int(math.Round(e.Right*float64(width)/100))
		if x1 <= x0 {
			x1 = x0 + 1
		}
		top := a.TopOffset() + card.Top
		out = append(out, box{
			id:    e.ID,
			x0:    x0,
			x1:    x1,
			y0:    int(math.Floor(top)),
			y1:    int(math.Ceil(top + card.Height)),
			stack: card.ZIndex(e),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].stack < out[j].stack })
	return out
}

// hit returns the top-most card under the cell.
func hit(bs []box, x, y int) (box, bool) {
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i].contains(x, y) {
			return bs[i], true
		}
	}
	return box{}, false
}
