package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agendacal/internal/agenda"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	freeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	cardColors = []lipgloss.Color{"24", "22", "53", "94", "30", "58"}
)

// cell is one grid character and the card painted over it (-1 for none).
type cell struct {
	ch     rune
	owner  int
	handle bool
}

func (m *Model) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.current()
	if d == nil {
		return "no days configured\n"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", d.Name(), d.Day().Format("2006-01-02"))))
	sb.WriteString(hintStyle.Render("  ←/→ day · esc cancel · q quit"))
	sb.WriteByte('\n')
	sb.WriteString(summaryLine(d))
	sb.WriteByte('\n')

	for _, line := range m.grid(d) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if m.err != nil {
		sb.WriteString(errStyle.Render(m.err.Error()))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func summaryLine(d *agenda.Agenda) string {
	summary := d.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		if k != agenda.FreeKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := []string{freeStyle.Render(fmt.Sprintf("Free %dh", d.Free()))}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %dh", k, summary[k]))
	}
	return strings.Join(parts, " · ")
}

// grid paints the 24 hour lines. Cards are painted bottom-most first so
// higher stacks cover lower ones.
func (m *Model) grid(d *agenda.Agenda) []string {
	width := m.gridWidth()
	cells := make([][]cell, agenda.HoursPerDay)
	for i := range cells {
		row := make([]cell, width)
		for j := range row {
			row[j] = cell{ch: ' ', owner: -1}
		}
		cells[i] = row
	}

	bs := boxes(d, width)
	for i, b := range bs {
		label := []rune(b.id)
		var detail []rune
		if e, ok := d.Event(b.id); ok {
			label = []rune(e.Description)
			if card, ok := d.Card(b.id); ok && card.DetailOpen {
				detail = []rune(fmt.Sprintf("%s-%s", e.Start.Format("15:04"), e.End.Format("15:04")))
			}
		}

		for y := b.y0; y < b.y1; y++ {
			line := y - headerLines
			if line < 0 || line >= len(cells) {
				continue
			}
			var text []rune
			switch y {
			case b.y0:
				text = label
			case b.y0 + 1:
				text = detail
			}
			for x := b.x0; x < b.x1; x++ {
				col := x - gutter
				if col < 0 || col >= width {
					continue
				}
				ch := ' '
				if k := x - b.x0 - 1; k >= 0 && k < len(text) && x < b.x1-1 {
					ch = text[k]
				}
				cells[line][col] = cell{ch: ch, owner: i, handle: y == b.y1-1 && b.y1-b.y0 > 1}
			}
		}
	}

	out := make([]string, len(cells))
	for h, row := range cells {
		out[h] = gutterStyle.Render(fmt.Sprintf("%02d:00 ", h)) + m.renderRow(row, bs)
	}
	return out
}

func (m *Model) renderRow(row []cell, bs []box) string {
	var sb strings.Builder
	for start := 0; start < len(row); {
		end := start + 1
		for end < len(row) && row[end].owner == row[start].owner && row[end].handle == row[start].handle {
			end++
		}
		runes := make([]rune, 0, end-start)
		for _, c := range row[start:end] {
			runes = append(runes, c.ch)
		}
		sb.WriteString(m.cardStyle(row[start], bs).Render(string(runes)))
		start = end
	}
	return sb.String()
}

func (m *Model) cardStyle(c cell, bs []box) lipgloss.Style {
	if c.owner < 0 {
		return lipgloss.NewStyle()
	}
	s := lipgloss.NewStyle().
		Background(cardColors[c.owner%len(cardColors)]).
		Foreground(lipgloss.Color("15")).
		Underline(c.handle)
	if bs[c.owner].id == m.active {
		s = s.Bold(true).Background(lipgloss.Color("166"))
	}
	return s
}
