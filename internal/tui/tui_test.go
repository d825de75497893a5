package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendacal/internal/agenda"
	"agendacal/internal/model"
)

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return monday.Add(time.Duration(h) * time.Hour) }

// line is the terminal line of hour h.
func line(h int) int { return headerLines + h }

func newModel(t *testing.T, opts Options) (*Model, *agenda.Planner) {
	t.Helper()
	mon := agenda.New("Monday", monday, agenda.Options{ResizePad: ResizePad, AllowTopResize: opts.AllowTopResize})
	require.NoError(t, mon.SetEvents([]model.Event{
		{ID: "focus", Description: "Focus", Start: at(3), End: at(6)},
		{ID: "work", Description: "Work", Start: at(7), End: at(17)},
	}))
	tue := agenda.New("Tuesday", monday.AddDate(0, 0, 1), agenda.Options{ResizePad: ResizePad})
	p, err := agenda.NewPlanner(mon, tue)
	require.NoError(t, err)

	m, err := New(p, &sync.Mutex{}, opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 86, Height: 30})
	return m, p
}

func press(m *Model, y int) {
	m.Update(tea.MouseMsg{X: 10, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func motion(m *Model, y int) {
	m.Update(tea.MouseMsg{X: 10, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
}

func release(m *Model, y int) {
	m.Update(tea.MouseMsg{X: 10, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone})
}

func event(t *testing.T, p *agenda.Planner, id string) model.Event {
	t.Helper()
	d, _ := p.Day("Monday")
	e, ok := d.Event(id)
	require.True(t, ok)
	return e
}

func TestRowsResolveWholeLines(t *testing.T) {
	day := agenda.New("Monday", monday, agenda.Options{})
	day.SetTopOffset(headerLines)
	require.NoError(t, day.SetRows(Rows()))

	for h := 0; h < agenda.HoursPerDay; h++ {
		got, ok := day.Mapper().PixelToHour(float64(h))
		require.True(t, ok)
		assert.Equal(t, h, got)
	}
}

func TestDragMovesEvent(t *testing.T) {
	m, p := newModel(t, Options{})

	press(m, line(4))
	assert.Equal(t, "focus", m.active)

	motion(m, line(6))
	e := event(t, p, "focus")
	assert.True(t, e.Start.Equal(at(5)), e.Start)
	assert.True(t, e.End.Equal(at(8)), e.End)

	release(m, line(6))
	assert.Empty(t, m.active)
	d, _ := p.Day("Monday")
	card, _ := d.Card("focus")
	assert.False(t, card.Active())
	assert.InDelta(t, 5.0, card.Top, 0.01)
}

func TestResizeFromLastLine(t *testing.T) {
	m, p := newModel(t, Options{})

	// focus covers 03..05; line 05 is its handle.
	press(m, line(5))
	d, _ := p.Day("Monday")
	card, _ := d.Card("focus")
	require.IsType(t, agenda.Resizing{}, card.Gesture)

	motion(m, line(8))
	e := event(t, p, "focus")
	assert.True(t, e.Start.Equal(at(3)))
	assert.True(t, e.End.Equal(at(9)), e.End)

	motion(m, line(1))
	e = event(t, p, "focus")
	assert.True(t, e.End.Equal(at(9)), "ending before the start is rejected")

	release(m, line(1))
	assert.Empty(t, m.active)
}

func TestTopResize(t *testing.T) {
	m, p := newModel(t, Options{AllowTopResize: true})

	press(m, line(3))
	motion(m, line(1))
	e := event(t, p, "focus")
	assert.True(t, e.Start.Equal(at(1)), e.Start)
	assert.True(t, e.End.Equal(at(6)))
	release(m, line(1))
}

func TestDoubleClickTogglesDetails(t *testing.T) {
	m, p := newModel(t, Options{DoubleClick: time.Second})
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	press(m, line(4))
	release(m, line(4))
	now = now.Add(200 * time.Millisecond)
	press(m, line(4))
	assert.Empty(t, m.active)

	d, _ := p.Day("Monday")
	card, _ := d.Card("focus")
	assert.True(t, card.DetailOpen)
	assert.Contains(t, m.View(), "03:00-06:00")

	now = now.Add(5 * time.Second)
	press(m, line(4))
	assert.Equal(t, "focus", m.active, "too slow for a double click")
}

func TestEscapeCancels(t *testing.T) {
	m, p := newModel(t, Options{})

	press(m, line(4))
	motion(m, line(5))
	m.Update(tea.KeyMsg{Type: tea.KeyEscape})

	assert.Empty(t, m.active)
	d, _ := p.Day("Monday")
	card, _ := d.Card("focus")
	assert.False(t, card.Active())
	assert.True(t, event(t, p, "focus").Start.Equal(at(4)), "edits made before cancel stay")
}

func TestPressOnEmptyCell(t *testing.T) {
	m, _ := newModel(t, Options{})
	press(m, line(20))
	assert.Empty(t, m.active)
	press(m, 0)
	assert.Empty(t, m.active)

	m.Update(tea.MouseMsg{X: 10, Y: line(4), Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	assert.Empty(t, m.active)
}

func TestSwitchDays(t *testing.T) {
	m, _ := newModel(t, Options{})
	assert.Contains(t, m.View(), "Monday 2025-03-10")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Contains(t, m.View(), "Tuesday 2025-03-11")
	assert.Contains(t, m.View(), "Free 24h")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Contains(t, m.View(), "Monday")

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Contains(t, m.View(), "Tuesday")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, Options{})
	press(m, line(4))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.active)
}

func TestViewShowsSummary(t *testing.T) {
	m, _ := newModel(t, Options{})
	v := m.View()
	assert.Contains(t, v, "Free 11h")
	assert.Contains(t, v, "Focus 3h")
	assert.Contains(t, v, "Work 10h")
	assert.Contains(t, v, "03:00")
	assert.Contains(t, v, "Focus")
}
