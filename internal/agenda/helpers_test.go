package agenda

import (
	"time"

	"agendacal/internal/model"
)

const rowHeight = 32.0

var testDay = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

// at returns testDay at hour h; negative or >23 values cross midnight.
func at(h int) time.Time {
	return testDay.Add(time.Duration(h) * time.Hour)
}

func event(id string, start, end int) model.Event {
	return model.Event{ID: id, Start: at(start), End: at(end), Description: id}
}

// newTestAgenda builds an agenda whose rows start at offset, with the agenda
// container also at offset, so agenda-relative row h spans [32h, 32h+32].
func newTestAgenda(offset float64, opts Options, events ...model.Event) *Agenda {
	a := New("test", testDay, opts)
	a.SetTopOffset(offset)
	if err := a.SetRows(UniformRows(offset, rowHeight)); err != nil {
		panic(err)
	}
	if err := a.SetEvents(events); err != nil {
		panic(err)
	}
	return a
}

type updateCall struct {
	ID         string
	Start, End time.Time
}

type recordingStore struct {
	calls []updateCall
	err   error
}

func (r *recordingStore) UpdateEvent(id string, start, end time.Time) error {
	r.calls = append(r.calls, updateCall{ID: id, Start: start, End: end})
	return r.err
}

type countingObserver struct {
	recomputes int
	mutations  map[string]int
	rejections int
}

func (c *countingObserver) Recomputed(string, int) { c.recomputes++ }

func (c *countingObserver) Mutated(_ string, gesture string) {
	if c.mutations == nil {
		c.mutations = map[string]int{}
	}
	c.mutations[gesture]++
}

func (c *countingObserver) Rejected(string, error) { c.rejections++ }
