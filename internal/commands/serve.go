package commands

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	appLog "agendacal/internal/log"
	"agendacal/internal/metrics"
	"agendacal/internal/web"
)

func addServe(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: base.Wrap80("Serve the interactive agenda page, its JSON API and /metrics, reloading calendar feeds on schedule."),
		Example: `
agendacal serve
agendacal serve --listen 0.0.0.0:8080
AGENDACAL_LISTEN=:9000 agendacal serve
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := e.load()
			if err != nil {
				return err
			}
			defer appLog.Sync()

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			mu := &sync.Mutex{}
			planner, err := buildPlanner(cfg, time.Now(), plannerOptions{Observer: m})
			if err != nil {
				return err
			}

			r, err := newRefresher(cfg, planner, mu, m)
			if err != nil {
				return err
			}
			if r != nil {
				go func() {
					if err := r.RunOnce(ctx); err != nil {
						appLog.Error("initial refresh failed", err)
					}
				}()
				if err := r.Start(ctx, cfg.RefreshCron); err != nil {
					return err
				}
				defer r.Stop()
			}

			appLog.Info("agendacal serving", "days", cfg.Days, "timezone", cfg.Timezone)
			err = web.NewServer(cfg, planner, mu, m).Run(ctx)
			appLog.Info("agendacal exiting")
			return err
		},
	}

	cmd.Flags().String("listen", "", "HTTP listen address, overrides the config file.")
	_ = e.v.BindPFlag("listen", cmd.Flags().Lookup("listen"))

	topLevel.AddCommand(cmd)
}

// commandContext falls back to Background for commands run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
