package cli

import (
	"github.com/pkg/errors"
	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/train"
)

var (
	inputFlag = &urfave.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Path to the raw churn CSV",
		Required: true,
	}

	testRatioFlag = &urfave.Float64Flag{
		Name:  "test-ratio",
		Usage: "Share of rows held out for testing (optional, default: train.test_ratio)",
	}

	seedFlag = &urfave.Int64Flag{
		Name:  "seed",
		Usage: "Shuffle seed (optional, default: train.seed)",
	}

	ingestCmd = &urfave.Command{
		Name:   "ingest",
		Usage:  "Split a raw CSV into train and test sets and store the reference dataset",
		Action: cmdIngest,
		Flags: []urfave.Flag{
			inputFlag,
			testRatioFlag,
			seedFlag,
		},
	}
)

func cmdIngest(c *urfave.Context) error {
	app := getConfig(c)
	cfg := app.Config
	ctx := c.Context

	ratio := cfg.Train.TestRatio
	if c.IsSet(testRatioFlag.Name) {
		ratio = c.Float64(testRatioFlag.Name)
	}
	if ratio <= 0 || ratio >= 1 {
		return errors.Errorf("test ratio must be in (0, 1), got %v", ratio)
	}
	seed := cfg.Train.Seed
	if c.IsSet(seedFlag.Name) {
		seed = c.Int64(seedFlag.Name)
	}

	raw, err := data.ReadCSVFile(ctx, c.String(inputFlag.Name))
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := train.Ingest(ctx, raw, pipeline.ChurnSchema, store, cfg.Artifacts.Dir, ratio, seed, app.Logger)
	if err != nil {
		return err
	}
	return encode(c, res)
}
