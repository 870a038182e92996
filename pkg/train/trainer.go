// Package train fits the churn preprocessor and classifier and persists them
// as a paired training run.
package train

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// Result reports a training run evaluated on the held-out set.
type Result struct {
	RunID         string        `json:"run_id" yaml:"run_id"`
	AUC           float64       `json:"auc" yaml:"auc"`
	Recall        float64       `json:"recall" yaml:"recall"`
	Accuracy      float64       `json:"accuracy" yaml:"accuracy"`
	Precision     float64       `json:"precision" yaml:"precision"`
	F1            float64       `json:"f1" yaml:"f1"`
	LogLoss       float64       `json:"logloss" yaml:"logloss"`
	BestIteration int           `json:"best_iteration" yaml:"best_iteration"`
	Trees         int           `json:"trees" yaml:"trees"`
	TrainRows     int           `json:"train_rows" yaml:"train_rows"`
	TestRows      int           `json:"test_rows" yaml:"test_rows"`
	Duration      time.Duration `json:"duration" yaml:"duration"`

	// ROC curve points on the test set, strictest cutoff first.
	FPR []float64 `json:"-" yaml:"-"`
	TPR []float64 `json:"-" yaml:"-"`
}

// Trainer fits and persists one training run.
type Trainer struct {
	Store        artifact.Store
	Schema       *pipeline.Schema
	ModelOptions []model.Option
	Logger       *slog.Logger
}

// NewTrainer returns a Trainer for the churn schema writing to store.
func NewTrainer(store artifact.Store, opts ...model.Option) *Trainer {
	return &Trainer{Store: store, Schema: pipeline.ChurnSchema, ModelOptions: opts, Logger: slog.Default()}
}

// TrainFiles reads the train and test CSVs concurrently and trains on them.
func (t *Trainer) TrainFiles(ctx context.Context, trainPath, testPath string) (*Result, error) {
	var trainSet, testSet *data.Frame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := data.ReadCSVFile(gctx, trainPath)
		trainSet = f
		return err
	})
	g.Go(func() error {
		f, err := data.ReadCSVFile(gctx, testPath)
		testSet = f
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t.Train(ctx, trainSet, testSet)
}

// Train fits the preprocessor on trainSet, fits the classifier with early
// stopping on testSet, evaluates it, and saves both artifacts under one run
// ID.
func (t *Trainer) Train(ctx context.Context, trainSet, testSet *data.Frame) (*Result, error) {
	start := time.Now()
	log := t.Logger
	if log == nil {
		log = slog.Default()
	}

	trainRows, err := FeatureRows(trainSet, t.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "train set")
	}
	testRows, err := FeatureRows(testSet, t.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "test set")
	}
	yTrain, err := Labels(trainSet, pipeline.LabelColumn)
	if err != nil {
		return nil, errors.Wrap(err, "train set")
	}
	yTest, err := Labels(testSet, pipeline.LabelColumn)
	if err != nil {
		return nil, errors.Wrap(err, "test set")
	}
	if err := checkBothClasses(yTrain, "train"); err != nil {
		return nil, err
	}
	if err := checkBothClasses(yTest, "test"); err != nil {
		return nil, err
	}

	pre := pipeline.NewPreprocessor(t.Schema)
	if err := pre.Fit(trainRows); err != nil {
		return nil, errors.Wrap(err, "fit preprocessor")
	}
	XTrain, err := pre.Transform(trainRows)
	if err != nil {
		return nil, errors.Wrap(err, "transform train set")
	}
	XTest, err := pre.Transform(testRows)
	if err != nil {
		return nil, errors.Wrap(err, "transform test set")
	}
	log.Info("preprocessor fitted", "rows", len(XTrain), "features", pre.OutputWidth())

	opts := append([]model.Option{model.WithLogger(log)}, t.ModelOptions...)
	gbm := model.NewGradientBoostingClassifier(opts...)
	if err := gbm.FitEval(ctx, XTrain, yTrain, XTest, yTest); err != nil {
		return nil, errors.Wrap(err, "fit model")
	}

	proba := gbm.PredictProba(XTest)
	yTrue := IntLabels(yTest)
	yPred := model.BinaryPredFromProba(proba, model.Threshold)
	prec, rec, f1 := model.PrecisionRecallF1(yTrue, yPred)
	fpr, tpr := model.ROC(yTrue, proba)
	res := &Result{
		RunID:         artifact.NewRunID(),
		AUC:           model.ROCAUC(yTrue, proba),
		Recall:        rec,
		Accuracy:      model.Accuracy(yTrue, yPred),
		Precision:     prec,
		F1:            f1,
		LogLoss:       model.LogLoss(yTrue, proba),
		BestIteration: gbm.BestIteration,
		Trees:         len(gbm.Trees),
		TrainRows:     len(XTrain),
		TestRows:      len(XTest),
		FPR:           fpr,
		TPR:           tpr,
	}

	fp := t.Schema.Fingerprint()
	preBlob, err := artifact.Seal(artifact.KindPreprocessor, fp, res.RunID, pre)
	if err != nil {
		return nil, err
	}
	modelBlob, err := artifact.Seal(artifact.KindModel, fp, res.RunID, gbm)
	if err != nil {
		return nil, err
	}
	if err := t.Store.Save(ctx, artifact.KindPreprocessor, preBlob); err != nil {
		return nil, errors.Wrap(err, "save preprocessor")
	}
	if err := t.Store.Save(ctx, artifact.KindModel, modelBlob); err != nil {
		return nil, errors.Wrap(err, "save model")
	}

	res.Duration = time.Since(start)
	log.Info("training complete",
		"run_id", res.RunID,
		"auc", res.AUC,
		"recall", res.Recall,
		"accuracy", res.Accuracy,
		"best_iteration", res.BestIteration,
		"duration", res.Duration,
	)
	return res, nil
}
