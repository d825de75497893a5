package ics

import (
	"context"
	"errors"
	"fmt"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Loader fetches, parses and expands a set of sources in one go.
type Loader struct {
	Fetcher *Fetcher
	Sources []Source
}

// Events returns the agenda events of every source within w. Sources that
// fail are skipped; their errors are joined into err while the events of
// the healthy sources are still returned.
func (l Loader) Events(ctx context.Context, w Window) ([]model.Event, error) {
	results, errs := l.Fetcher.FetchAll(ctx, l.Sources)

	var parsed []ParsedEvent
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics source %s: parse: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, evs...)
	}

	expanded, err := Expand(parsed, w)
	if err != nil {
		return nil, err
	}

	appLog.Info("ics loaded",
		"sources", len(l.Sources),
		"failed", len(errs),
		"events", len(expanded.Events),
		"truncated", len(expanded.Truncated),
	)
	return expanded.Events, errors.Join(errs...)
}
