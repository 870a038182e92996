package cli

import (
	"path/filepath"

	urfave "github.com/urfave/cli/v2"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/report"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/train"
)

var (
	trainFileFlag = &urfave.StringFlag{
		Name:  "train",
		Usage: "Path to the training CSV (optional, default: <artifacts.dir>/train.csv)",
	}

	testFileFlag = &urfave.StringFlag{
		Name:  "test",
		Usage: "Path to the test CSV (optional, default: <artifacts.dir>/test.csv)",
	}

	rocPlotFlag = &urfave.StringFlag{
		Name:  "roc-plot",
		Usage: "Write the test-set ROC curve to this image file (optional)",
	}

	trainCmd = &urfave.Command{
		Name:   "train",
		Usage:  "Fit the preprocessor and classifier and store both artifacts",
		Action: cmdTrain,
		Flags: []urfave.Flag{
			trainFileFlag,
			testFileFlag,
			rocPlotFlag,
		},
	}
)

func cmdTrain(c *urfave.Context) error {
	app := getConfig(c)
	cfg := app.Config
	ctx := c.Context

	trainPath := c.String(trainFileFlag.Name)
	if trainPath == "" {
		trainPath = filepath.Join(cfg.Artifacts.Dir, train.TrainFileName)
	}
	testPath := c.String(testFileFlag.Name)
	if testPath == "" {
		testPath = filepath.Join(cfg.Artifacts.Dir, train.TestFileName)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	t := train.NewTrainer(store, append(cfg.ModelOptions(), model.WithLogger(app.Logger))...)
	t.Logger = app.Logger
	res, err := t.TrainFiles(ctx, trainPath, testPath)
	if err != nil {
		return err
	}

	if p := c.String(rocPlotFlag.Name); p != "" {
		if err := report.PlotROC(res.FPR, res.TPR, res.AUC, p); err != nil {
			return err
		}
		app.Logger.Info("ROC curve written", "path", p)
	}
	return encode(c, res)
}
