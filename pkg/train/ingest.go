package train

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/loader"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

const (
	TrainFileName = "train.csv"
	TestFileName  = "test.csv"
)

// IngestResult describes the files written by Ingest.
type IngestResult struct {
	TrainPath string `json:"train_path" yaml:"train_path"`
	TestPath  string `json:"test_path" yaml:"test_path"`
	TrainRows int    `json:"train_rows" yaml:"train_rows"`
	TestRows  int    `json:"test_rows" yaml:"test_rows"`
}

// Ingest keeps the schema and label columns of raw, splits the rows into
// train and test sets, writes both as CSV under dir and stores the test set
// as the reference dataset serving builds its fallback profile from.
func Ingest(ctx context.Context, raw *data.Frame, schema *pipeline.Schema, store artifact.Store, dir string, testRatio float64, seed int64, logger *slog.Logger) (*IngestResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if raw.Len() == 0 {
		return nil, errors.Wrap(errs.ErrDataUnavailable, "raw dataset is empty")
	}
	cols := append(schema.Names(), pipeline.LabelColumn)
	sel, err := raw.Select(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "raw dataset")
	}

	trainSet, testSet := loader.SplitFrame(sel, testRatio, seed)
	logger.Info("split dataset", "rows", sel.Len(), "train", trainSet.Len(), "test", testSet.Len(), "seed", seed)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	res := &IngestResult{
		TrainPath: filepath.Join(dir, TrainFileName),
		TestPath:  filepath.Join(dir, TestFileName),
		TrainRows: trainSet.Len(),
		TestRows:  testSet.Len(),
	}
	if err := trainSet.WriteCSVFile(res.TrainPath); err != nil {
		return nil, err
	}
	if err := testSet.WriteCSVFile(res.TestPath); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := testSet.WriteCSV(&buf); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, artifact.KindReferenceDataset, buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "save reference dataset")
	}
	logger.Info("ingest complete", "train_path", res.TrainPath, "test_path", res.TestPath)
	return res, nil
}
