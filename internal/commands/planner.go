package commands

import (
	"context"
	"sync"
	"time"

	"agendacal/internal/agenda"
	"agendacal/internal/config"
	"agendacal/internal/ics"
	appLog "agendacal/internal/log"
	"agendacal/internal/refresh"
)

// plannerOptions adjusts the agendas for a particular host.
type plannerOptions struct {
	// ResizePad overrides cfg.Layout.ResizePad when set.
	ResizePad float64
	Observer  agenda.Observer
}

// buildPlanner creates one agenda per configured day, day i being today
// plus i days, each seeded with the configured events.
func buildPlanner(cfg *config.Config, now time.Time, opts plannerOptions) (*agenda.Planner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	pad := cfg.Layout.ResizePad
	if opts.ResizePad > 0 {
		pad = opts.ResizePad
	}

	today := agenda.StartOfDay(now.In(loc))
	p, err := agenda.NewPlanner()
	if err != nil {
		return nil, err
	}
	for i, name := range cfg.Days {
		midnight := today.AddDate(0, 0, i)
		day := agenda.New(name, midnight, agenda.Options{
			ElevationStep:  cfg.Layout.ElevationStep,
			ResizePad:      pad,
			AllowTopResize: cfg.Layout.AllowTopResize,
			Observer:       opts.Observer,
		})
		if err := day.SetEvents(cfg.SeedEvents(midnight)); err != nil {
			return nil, err
		}
		if err := p.Add(day); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// newRefresher wires the configured feeds to the planner, or returns nil
// when none are configured.
func newRefresher(cfg *config.Config, p *agenda.Planner, mu sync.Locker, rec refresh.Recorder) (*refresh.Refresher, error) {
	if len(cfg.ICS) == 0 {
		return nil, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolvedCacheDir()
	if err != nil {
		return nil, err
	}
	src := ics.Loader{Fetcher: ics.NewFetcher(dir), Sources: cfg.Sources()}
	return refresh.New(p, mu, src, loc, rec).IncludeAllDay(cfg.ShowAllDay), nil
}

// loadFeeds runs one refresh. Feed failures are logged, not returned, so
// offline commands still work on the seeded days.
func loadFeeds(ctx context.Context, cfg *config.Config, p *agenda.Planner) {
	r, err := newRefresher(cfg, p, &sync.Mutex{}, nil)
	if err != nil {
		appLog.Error("feeds disabled", err)
		return
	}
	if r == nil {
		return
	}
	if err := r.RunOnce(ctx); err != nil {
		appLog.Error("feed refresh failed", err)
	}
}
