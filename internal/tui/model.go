// Package tui hosts the planner in a terminal: one line per hour, cards
// drawn side by side, and mouse gestures fed to the agenda engine.
package tui

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agendacal/internal/agenda"
	appLog "agendacal/internal/log"
)

const (
	defaultWidth  = 86
	refreshEvery  = 2 * time.Second
	mousePointer  = 0
	defaultDouble = 400 * time.Millisecond
)

type Options struct {
	// DoubleClick is the window in which a second press on the same card
	// toggles its details.
	DoubleClick    time.Duration
	AllowTopResize bool
}

type tickMsg time.Time

// Model is the bubbletea model. All planner access holds mu, which the
// refresher shares.
type Model struct {
	planner *agenda.Planner
	mu      sync.Locker
	opts    Options
	now     func() time.Time

	day    int
	width  int
	height int

	active      string
	lastPress   string
	lastPressAt time.Time

	err error
}

// New lays every planner day out on the terminal grid.
func New(planner *agenda.Planner, mu sync.Locker, opts Options) (*Model, error) {
	if opts.DoubleClick <= 0 {
		opts.DoubleClick = defaultDouble
	}
	mu.Lock()
	defer mu.Unlock()
	for _, d := range planner.Days() {
		d.SetTopOffset(headerLines)
		if err := d.SetRows(Rows()); err != nil {
			return nil, fmt.Errorf("tui: %s: %w", d.Name(), err)
		}
	}
	return &Model{
		planner: planner,
		mu:      mu,
		opts:    opts,
		now:     time.Now,
		width:   defaultWidth,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return tea.Quit
	case "esc":
		m.cancel()
	case "tab", "right", "l":
		m.switchDay(1)
	case "shift+tab", "left", "h":
		m.switchDay(-1)
	}
	return nil
}

func (m *Model) switchDay(step int) {
	m.cancel()
	m.mu.Lock()
	n := len(m.planner.Days())
	m.mu.Unlock()
	if n == 0 {
		return
	}
	m.day = ((m.day+step)%n + n) % n
	m.lastPress = ""
	m.err = nil
}

// cancel ends the running gesture, keeping edits already made.
func (m *Model) cancel() {
	if m.active == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.current(); d != nil {
		if err := d.Cancel(m.active); err != nil {
			appLog.Debug("tui cancel", "id", m.active, "err", err)
		}
	}
	m.active = ""
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.current()
	if d == nil {
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.active != "" {
			return
		}
		b, ok := hit(boxes(d, m.gridWidth()), msg.X, msg.Y)
		if !ok {
			return
		}
		ev := agenda.PointerEvent{
			Phase:      agenda.PhaseDown,
			ClientY:    cellY(msg.Y),
			PointerID:  mousePointer,
			ResizeFrom: m.edgeAt(b, msg),
		}
		now := m.now()
		if m.lastPress == b.id && now.Sub(m.lastPressAt) <= m.opts.DoubleClick {
			ev.Clicks = 2
			ev.ResizeFrom = ""
			m.lastPress = ""
		} else {
			m.lastPress, m.lastPressAt = b.id, now
		}
		m.err = d.HandlePointer(b.id, ev)
		if card, ok := d.Card(b.id); ok && card.Active() {
			m.active = b.id
		}

	case tea.MouseActionMotion:
		if m.active == "" {
			return
		}
		m.err = d.HandlePointer(m.active, agenda.PointerEvent{
			Phase:     agenda.PhaseMove,
			ClientY:   cellY(msg.Y),
			PointerID: mousePointer,
		})

	case tea.MouseActionRelease:
		if m.active == "" {
			return
		}
		m.err = d.HandlePointer(m.active, agenda.PointerEvent{
			Phase:     agenda.PhaseUp,
			ClientY:   cellY(msg.Y),
			PointerID: mousePointer,
		})
		m.active = ""
	}
}

// edgeAt picks the resize handle under the press. The last line of a card
// taller than one line is its bottom handle; shift-press resizes from any
// line. The first line is the top handle when enabled.
func (m *Model) edgeAt(b box, msg tea.MouseMsg) agenda.Edge {
	tall := b.y1-b.y0 > 1
	switch {
	case msg.Shift, tall && msg.Y == b.y1-1:
		return agenda.EdgeBottom
	case tall && m.opts.AllowTopResize && msg.Y == b.y0:
		return agenda.EdgeTop
	}
	return ""
}

func (m *Model) gridWidth() int {
	w := m.width - gutter
	if w < 1 {
		return 1
	}
	return w
}

// current returns the selected day. Callers hold mu.
func (m *Model) current() *agenda.Agenda {
	days := m.planner.Days()
	if len(days) == 0 {
		return nil
	}
	if m.day >= len(days) {
		m.day = 0
	}
	return days[m.day]
}

// Run starts the program on the alternate screen with mouse tracking.
func Run(planner *agenda.Planner, mu sync.Locker, opts Options) error {
	m, err := New(planner, mu, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
