package commands

import (
	"sync"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	appLog "agendacal/internal/log"
	"agendacal/internal/tui"
)

func addTUI(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: base.Wrap80("Plan the days in the terminal: drag cards with the mouse, pull their last line to resize."),
		Example: `
agendacal tui
agendacal tui --timezone Europe/Berlin
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := e.load()
			if err != nil {
				return err
			}
			defer appLog.Sync()
			// Log lines would tear the alternate screen.
			if cfg.Log.Level != "debug" {
				appLog.SetLevel(appLog.LevelError)
			}

			mu := &sync.Mutex{}
			planner, err := buildPlanner(cfg, time.Now(), plannerOptions{ResizePad: tui.ResizePad})
			if err != nil {
				return err
			}

			r, err := newRefresher(cfg, planner, mu, nil)
			if err != nil {
				return err
			}
			if r != nil {
				ctx := commandContext(cmd)
				if err := r.RunOnce(ctx); err != nil {
					appLog.Error("feed refresh failed", err)
				}
				if err := r.Start(ctx, cfg.RefreshCron); err != nil {
					return err
				}
				defer r.Stop()
			}

			return tui.Run(planner, mu, tui.Options{
				DoubleClick:    cfg.Layout.DoubleClick(),
				AllowTopResize: cfg.Layout.AllowTopResize,
			})
		},
	}
	topLevel.AddCommand(cmd)
}
