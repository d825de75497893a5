// Package refresh reloads calendar feeds into the planner on a cron
// schedule.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"agendacal/internal/agenda"
	"agendacal/internal/ics"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Source yields the feed events inside a window.
type Source interface {
	Events(ctx context.Context, w ics.Window) ([]model.Event, error)
}

// Recorder receives the outcome of every run. *metrics.Service implements
// it.
type Recorder interface {
	ObserveRefresh(events int, err error, at time.Time)
}

// Refresher replaces the feed-owned events of every planner day with the
// latest feed contents. Events it did not load (seeds, events added by
// hand) are left alone.
type Refresher struct {
	planner  *agenda.Planner
	mu       sync.Locker
	source   Source
	loc      *time.Location
	recorder Recorder

	allDay bool

	owned map[string]map[string]bool // day name -> ids loaded from the feed
	cron  *cron.Cron
	now   func() time.Time
}

// New creates a refresher. mu must be the lock every other user of the
// planner holds.
func New(planner *agenda.Planner, mu sync.Locker, source Source, loc *time.Location, recorder Recorder) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		planner:  planner,
		mu:       mu,
		source:   source,
		loc:      loc,
		recorder: recorder,
		owned:    make(map[string]map[string]bool),
		now:      time.Now,
	}
}

// IncludeAllDay makes all-day feed events part of every run.
func (r *Refresher) IncludeAllDay(v bool) *Refresher {
	r.allDay = v
	return r
}

// RunOnce loads the feeds for the span of all planner days and merges them
// into each day. A partially failing source still updates the days with
// what it returned; the error is reported.
func (r *Refresher) RunOnce(ctx context.Context) error {
	days := r.planner.Days()
	if len(days) == 0 {
		return nil
	}

	w := ics.Window{
		Start:         days[0].Day(),
		End:           days[0].Day().AddDate(0, 0, 1),
		Location:      r.loc,
		IncludeAllDay: r.allDay,
	}
	for _, d := range days[1:] {
		if d.Day().Before(w.Start) {
			w.Start = d.Day()
		}
		if end := d.Day().AddDate(0, 0, 1); end.After(w.End) {
			w.End = end
		}
	}

	events, err := r.source.Events(ctx, w)
	if r.recorder != nil {
		r.recorder.ObserveRefresh(len(events), err, r.now())
	}
	if err != nil && len(events) == 0 {
		return fmt.Errorf("refresh: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, d := range days {
		if mErr := r.merge(d, events); mErr != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", d.Name(), mErr))
		}
	}
	return errors.Join(errs...)
}

// merge must be called with the lock held.
func (r *Refresher) merge(day *agenda.Agenda, feed []model.Event) error {
	start := day.Day()
	end := start.AddDate(0, 0, 1)
	previous := r.owned[day.Name()]

	merged := make([]model.Event, 0)
	for _, e := range day.Events() {
		if !previous[e.ID] {
			merged = append(merged, e)
		}
	}

	owned := make(map[string]bool)
	for _, e := range feed {
		if e.Start.Before(end) && e.End.After(start) {
			merged = append(merged, e)
			owned[e.ID] = true
		}
	}

	if err := day.SetEvents(merged); err != nil {
		return err
	}
	r.owned[day.Name()] = owned
	appLog.Debug("refresh merged", "day", day.Name(), "feed_events", len(owned), "events", len(merged))
	return nil
}

// Start runs RunOnce on the cron spec (standard five fields, or
// descriptors like @every 5m) until Stop.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(r.loc))
	_, err := c.AddFunc(spec, func() {
		if err := r.RunOnce(ctx); err != nil {
			appLog.Error("refresh failed", err)
		}
	})
	if err != nil {
		return fmt.Errorf("refresh: schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	appLog.Info("refresh scheduled", "spec", spec)
	return nil
}

// Stop stops the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
