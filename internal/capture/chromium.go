package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"agendacal/internal/model"
)

// Viewport and timeout used when BrowserRows leaves them zero.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 1600
	DefaultTimeoutSec = 30
)

// BrowserRows measures the hour rows of a rendered agenda page in headless
// Chromium. It implements agenda.RowProvider.
//
// The page must mark the agenda container of each day with
// data-agenda="<day>", every hour row inside it with data-timeslot="<hour>",
// and its root with data-ready="true" once rendered.
type BrowserRows struct {
	// URL of the agenda page, e.g. "http://127.0.0.1:8080/".
	URL string
	// Day is the data-agenda name to measure.
	Day string

	Width   int
	Height  int
	Timeout time.Duration

	// Screenshot, if set, receives a full-page PNG of the measured page.
	Screenshot string
}

// Measurement is the geometry of one day's agenda in page coordinates.
type Measurement struct {
	TopOffset float64     `json:"top_offset"`
	Rows      []model.Row `json:"rows"`
}

// rawRow mirrors what the page script returns. Hour is the untouched
// data-timeslot attribute.
type rawRow struct {
	Hour   *string `json:"hour"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type rawMeasurement struct {
	TopOffset float64  `json:"top_offset"`
	Rows      []rawRow `json:"rows"`
}

// Rows returns the measured rows only.
func (b BrowserRows) Rows(ctx context.Context) ([]model.Row, error) {
	m, err := b.Measure(ctx)
	if err != nil {
		return nil, err
	}
	return m.Rows, nil
}

// Measure loads the page, waits for data-ready and reads the rectangles of
// the day's container and hour rows.
func (b BrowserRows) Measure(parentCtx context.Context) (Measurement, error) {
	if b.URL == "" {
		return Measurement{}, fmt.Errorf("capture: URL is required")
	}
	if b.Day == "" {
		return Measurement{}, fmt.Errorf("capture: day is required")
	}
	if b.Width <= 0 {
		b.Width = DefaultWidth
	}
	if b.Height <= 0 {
		b.Height = DefaultHeight
	}
	if b.Timeout <= 0 {
		b.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	script, err := measureScript(b.Day)
	if err != nil {
		return Measurement{}, err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, b.Timeout)
	defer timeoutCancel()

	var raw *rawMeasurement
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(b.Width), int64(b.Height)),
		chromedp.Navigate(b.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.Evaluate(script, &raw),
	}
	if b.Screenshot != "" {
		tasks = append(tasks, chromedp.FullScreenshot(&png, 90))
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return Measurement{}, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if raw == nil {
		return Measurement{}, fmt.Errorf("capture: no agenda named %q on %s", b.Day, b.URL)
	}

	if b.Screenshot != "" {
		if err := os.WriteFile(b.Screenshot, png, 0o644); err != nil {
			return Measurement{}, fmt.Errorf("capture: failed to write PNG: %w", err)
		}
	}

	return decode(*raw), nil
}

func measureScript(day string) (string, error) {
	quoted, err := json.Marshal(day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
  const day = %s;
  const root = Array.from(document.querySelectorAll("[data-agenda]"))
    .find(el => el.dataset.agenda === day);
  if (!root) return null;
  const y = window.scrollY;
  const rows = Array.from(root.querySelectorAll("[data-timeslot]")).map(el => {
    const r = el.getBoundingClientRect();
    return {hour: el.getAttribute("data-timeslot"), top: r.top + y, bottom: r.bottom + y};
  });
  return {top_offset: root.getBoundingClientRect().top + y, rows};
})()`, quoted), nil
}

// decode converts page rows to model rows. A missing or non-numeric hour
// attribute becomes a nil Hour, which the timeslot builder rejects.
func decode(raw rawMeasurement) Measurement {
	out := Measurement{TopOffset: raw.TopOffset, Rows: make([]model.Row, 0, len(raw.Rows))}
	for _, r := range raw.Rows {
		row := model.Row{Top: r.Top, Bottom: r.Bottom}
		if r.Hour != nil {
			if h, err := strconv.Atoi(*r.Hour); err == nil {
				row.Hour = &h
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
