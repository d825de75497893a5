// Package commands is the agendacal command line.
package commands

import (
	"strings"

	"github.com/joho/godotenv"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"agendacal/internal/config"
	appLog "agendacal/internal/log"
)

const defaultConfigPath = "~/.config/agendacal/config.yaml"

// env carries the flag/environment view shared by every command.
type env struct {
	v *viper.Viper
}

func New() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("AGENDACAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "agendacal",
		Short: base.Wrap80("Hour-by-hour day planner with draggable events, free-time accounting and calendar feeds."),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// A missing .env is fine.
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", defaultConfigPath, "Path to the YAML config file.")
	flags.String("timezone", "", "IANA timezone, overrides the config file.")
	flags.String("log-level", "", "One of debug, info, error; overrides the config file.")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("timezone", flags.Lookup("timezone"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	AddCommands(cmd, &env{v: v})
	return cmd
}

func AddCommands(topLevel *cobra.Command, e *env) {
	addServe(topLevel, e)
	addTUI(topLevel, e)
	addLayout(topLevel, e)
	addFree(topLevel, e)
	addMeasure(topLevel, e)
	addVersion(topLevel)
}

// load reads the config file and applies flag and environment overrides.
func (e *env) load() (*config.Config, error) {
	path := e.v.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if cfg == nil {
			return nil, err
		}
		appLog.Error("could not write default config", err, "config_path", path)
	}

	if tz := e.v.GetString("timezone"); tz != "" {
		cfg.Timezone = tz
	}
	if lvl := e.v.GetString("log.level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if listen := e.v.GetString("listen"); listen != "" {
		cfg.Listen = listen
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := appLog.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	appLog.Debug("effective config",
		"config_path", path,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"days", cfg.Days,
		"ics_count", len(cfg.ICS),
	)
	return cfg, nil
}
