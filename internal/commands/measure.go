package commands

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"agendacal/internal/capture"
)

type measureOptions struct {
	URL        string
	Day        string
	Width      int
	Height     int
	Timeout    time.Duration
	Screenshot string
}

func addMeasure(topLevel *cobra.Command, e *env) {
	o := &measureOptions{}
	cmd := &cobra.Command{
		Use:   "measure",
		Short: base.Wrap80("Measure a rendered agenda page in headless Chromium and lay the day out on the measured rows."),
		Example: `
agendacal measure --day monday
agendacal measure --url http://127.0.0.1:8080/ --day sunday --screenshot sunday.png
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := e.load()
			if err != nil {
				return err
			}
			p, err := buildPlanner(cfg, time.Now(), plannerOptions{})
			if err != nil {
				return err
			}

			name := o.Day
			if name == "" {
				name = cfg.Days[0]
			}
			day, ok := p.Day(name)
			if !ok {
				return fmt.Errorf("unknown day %q", name)
			}
			url := o.URL
			if url == "" {
				url = "http://" + cfg.Listen + "/"
			}

			m, err := capture.BrowserRows{
				URL:        url,
				Day:        day.Name(),
				Width:      o.Width,
				Height:     o.Height,
				Timeout:    o.Timeout,
				Screenshot: o.Screenshot,
			}.Measure(commandContext(cmd))
			if err != nil {
				return err
			}

			day.SetTopOffset(m.TopOffset)
			if err := day.SetRows(m.Rows); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold("Hour"), bold("Top"), bold("Bottom"))
			for _, ts := range day.Timeslots() {
				tbl.AddRow(ts.Hour, fmt.Sprintf("%.1f", ts.Top), fmt.Sprintf("%.1f", ts.Bottom))
			}
			_, _ = fmt.Fprintf(out, "%s  %s\n", dayTitle(day), faint(fmt.Sprintf("top offset %.1f", m.TopOffset)))
			_, _ = fmt.Fprintln(out, tbl)
			_, _ = fmt.Fprintln(out)
			renderLayout(out, day, 0)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.URL, "url", "", "Agenda page URL, defaults to the configured listen address.")
	cmd.Flags().StringVar(&o.Day, "day", "", "Planner day to measure, defaults to the first.")
	cmd.Flags().IntVar(&o.Width, "width", capture.DefaultWidth, "Viewport width.")
	cmd.Flags().IntVar(&o.Height, "height", capture.DefaultHeight, "Viewport height.")
	cmd.Flags().DurationVar(&o.Timeout, "timeout", time.Duration(capture.DefaultTimeoutSec)*time.Second, "Browser timeout.")
	cmd.Flags().StringVar(&o.Screenshot, "screenshot", "", "Write a full-page PNG here.")

	topLevel.AddCommand(cmd)
}
