package agenda

import (
	"fmt"
	"strings"
)

// Planner is the ordered list of day agendas shown side by side. It is owned
// by the root of the application and handed to the hosts that need it.
type Planner struct {
	days []*Agenda
}

// NewPlanner returns a planner over the given agendas, in order.
func NewPlanner(days ...*Agenda) (*Planner, error) {
	p := &Planner{}
	for _, d := range days {
		if err := p.Add(d); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add appends a day. Names are unique, case-insensitively.
func (p *Planner) Add(a *Agenda) error {
	if _, ok := p.Day(a.Name()); ok {
		return fmt.Errorf("planner: duplicate day %q", a.Name())
	}
	p.days = append(p.days, a)
	return nil
}

// Days returns the agendas in display order.
func (p *Planner) Days() []*Agenda {
	return append([]*Agenda(nil), p.days...)
}

// Day finds an agenda by name.
func (p *Planner) Day(name string) (*Agenda, bool) {
	for _, d := range p.days {
		if strings.EqualFold(d.Name(), name) {
			return d, true
		}
	}
	return nil, false
}
