package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"agendacal/internal/agenda"
	"agendacal/internal/config"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
)

type reportOptions struct {
	Day   string
	Feeds bool
}

func addReportArgs(cmd *cobra.Command, o *reportOptions) {
	cmd.Flags().StringVar(&o.Day, "day", "", "Only report this planner day.")
	cmd.Flags().BoolVar(&o.Feeds, "feeds", true, "Load the configured calendar feeds first.")
}

func addLayout(topLevel *cobra.Command, e *env) {
	o := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "layout",
		Short: base.Wrap80("Print every event's grid position and side-by-side placement, using uniform rows of layout.row_height."),
		Example: `
agendacal layout
agendacal layout --day monday --feeds=false
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, days, err := e.offlineDays(cmd, o)
			if err != nil {
				return err
			}
			for _, d := range days {
				renderLayout(cmd.OutOrStdout(), d, cfg.Layout.RowHeight)
			}
			return nil
		},
	}
	addReportArgs(cmd, o)
	topLevel.AddCommand(cmd)
}

func addFree(topLevel *cobra.Command, e *env) {
	o := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "free",
		Short: base.Wrap80("Print the hours spent per description and the free hours left on each planner day."),
		Example: `
agendacal free
agendacal free --day sunday
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, days, err := e.offlineDays(cmd, o)
			if err != nil {
				return err
			}
			for _, d := range days {
				renderFree(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
	addReportArgs(cmd, o)
	topLevel.AddCommand(cmd)
}

// offlineDays builds the planner without a host, measured with uniform
// rows, and selects the requested days.
func (e *env) offlineDays(cmd *cobra.Command, o *reportOptions) (*config.Config, []*agenda.Agenda, error) {
	cfg, err := e.load()
	if err != nil {
		return nil, nil, err
	}
	p, err := buildPlanner(cfg, time.Now(), plannerOptions{})
	if err != nil {
		return nil, nil, err
	}
	if o.Feeds {
		loadFeeds(commandContext(cmd), cfg, p)
	}

	days := p.Days()
	if o.Day != "" {
		d, ok := p.Day(o.Day)
		if !ok {
			return nil, nil, fmt.Errorf("unknown day %q", o.Day)
		}
		days = []*agenda.Agenda{d}
	}
	for _, d := range days {
		if err := d.SetRows(agenda.UniformRows(0, cfg.Layout.RowHeight)); err != nil {
			return nil, nil, err
		}
	}
	return cfg, days, nil
}

func dayTitle(d *agenda.Agenda) string {
	return fmt.Sprintf("%s %s", bold(d.Name()), faint(d.Day().Format("Mon 2006-01-02")))
}

func renderLayout(w io.Writer, d *agenda.Agenda, rowHeight float64) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Event"), bold("Start"), bold("End"), bold("Top"), bold("Height"), bold("Left%"), bold("Right%"), bold("Z"))
	for _, e := range d.Events() {
		card, ok := d.Card(e.ID)
		if !ok {
			continue
		}
		tbl.AddRow(
			e.Description,
			clock(d, e.Start),
			clock(d, e.End),
			fmt.Sprintf("%.0f", card.Top),
			fmt.Sprintf("%.0f", card.Height),
			fmt.Sprintf("%.2f", e.Left),
			fmt.Sprintf("%.2f", e.Right),
			card.ZIndex(e),
		)
	}
	_, _ = fmt.Fprintf(w, "%s  %s\n", dayTitle(d), faint(fmt.Sprintf("(rows of %gpx)", rowHeight)))
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)
}

// clock formats t against the day, marking times on other days.
func clock(d *agenda.Agenda, t time.Time) string {
	s := t.Format("15:04")
	switch midnight := agenda.StartOfDay(t); {
	case midnight.Before(d.Day()):
		return s + " (-1d)"
	case midnight.After(d.Day()):
		return s + " (+1d)"
	}
	return s
}

func renderFree(w io.Writer, d *agenda.Agenda) {
	summary := d.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		if k != agenda.FreeKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Activity"), bold("Hours"))
	for _, k := range keys {
		tbl.AddRow(k, summary[k])
	}
	free := fmt.Sprint(d.Free())
	if d.Free() < 0 {
		free = red(free)
	} else {
		free = green(free)
	}
	tbl.AddRow(bold(agenda.FreeKey), free)

	_, _ = fmt.Fprintln(w, dayTitle(d))
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)
}
