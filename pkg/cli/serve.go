package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	urfave "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/churn"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/server"
)

var (
	addrFlag = &urfave.StringFlag{
		Name:  "addr",
		Usage: "Listen address (optional, default: serve.addr)",
	}

	watchFlag = &urfave.BoolFlag{
		Name:  "watch",
		Usage: "Reload artifacts when the artifact directory changes (optional, default: serve.watch)",
	}

	serveCmd = &urfave.Command{
		Name:    "serve",
		Aliases: []string{"server"},
		Usage:   "Serve predictions over HTTP",
		Action:  cmdServe,
		Flags: []urfave.Flag{
			addrFlag,
			watchFlag,
		},
	}
)

func cmdServe(c *urfave.Context) error {
	app := getConfig(c)
	cfg := app.Config
	logger := app.Logger

	if c.IsSet(addrFlag.Name) {
		cfg.Serve.Addr = c.String(addrFlag.Name)
	}
	if c.IsSet(watchFlag.Name) {
		cfg.Serve.Watch = c.Bool(watchFlag.Name)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := churn.NewEngine(churn.WithLogger(logger))
	if err := engine.Reload(ctx, store, pipeline.ChurnSchema); err != nil {
		// keep serving; /predict answers 503 until artifacts appear
		logger.Warn("starting without artifacts", "error", err)
	}

	srv := server.New(engine, server.WithLogger(logger), server.WithGracefulPeriod(cfg.Serve.ShutdownTimeout))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Serve.Addr) })
	if cfg.Serve.Watch {
		if cfg.Artifacts.Backend == artifact.BackendPostgres {
			logger.Warn("artifact watch needs a local backend, disabled", "backend", cfg.Artifacts.Backend)
		} else {
			g.Go(func() error {
				return artifact.Watch(gctx, cfg.Artifacts.Dir, cfg.Serve.Debounce, logger, func(ctx context.Context) {
					_ = engine.Reload(ctx, store, pipeline.ChurnSchema)
				})
			})
		}
	}
	return g.Wait()
}
