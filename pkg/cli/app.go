// Package cli implements the churnctl command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/config"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/logging"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/report"
)

const appConfigKey = "app-config"

var (
	version = "v0.0.1-default"
	commit  = ""

	configFlag = &urfave.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file (optional, CHURN_* env vars override it)",
		EnvVars: []string{"CHURN_CONFIG"},
	}

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: report.FormatJSON,
	}
)

type appConfig struct {
	Config *config.Config
	Logger *slog.Logger
	Format string
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

// Execute creates and runs the CLI application.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func NewApp() *urfave.App {
	return &urfave.App{
		Name:                 "churnctl",
		Version:              fmt.Sprintf("%s (commit: %s)", version, commit),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Train and serve the telecom churn model",
		Flags: []urfave.Flag{
			configFlag,
			debugFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			ingestCmd,
			trainCmd,
			predictCmd,
			profileCmd,
			serveCmd,
			configCmd,
		},
		Before: func(c *urfave.Context) error {
			cfg, err := config.Load(c.String(configFlag.Name))
			if err != nil {
				return err
			}
			if c.Bool(debugFlag.Name) {
				cfg.Log.Level = "debug"
			}
			format, err := report.ParseFormat(c.String(formatFlag.Name))
			if err != nil {
				return err
			}

			logger := logging.New(c.App.ErrWriter, cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(logger)

			c.App.Metadata[appConfigKey] = &appConfig{
				Config: cfg,
				Logger: logger,
				Format: format,
			}
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (artifact.StoreCloser, error) {
	a := cfg.Artifacts
	store, err := artifact.Open(ctx, a.Backend, a.Dir, a.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s artifact store", a.Backend)
	}
	return store, nil
}

func encode(c *urfave.Context, v any) error {
	return report.Encode(c.App.Writer, getConfig(c).Format, v)
}
