package train

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/loader"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/testutil"
)

var fastOptions = []model.Option{
	model.WithNEstimators(60),
	model.WithLearningRate(0.3),
	model.WithMaxDepth(3),
	model.WithEarlyStoppingRounds(10),
}

func newTrainer(t *testing.T) (*Trainer, *artifact.FileStore) {
	t.Helper()
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewTrainer(store, fastOptions...), store
}

func TestTrain(t *testing.T) {
	tr, store := newTrainer(t)
	trainSet, testSet := loader.SplitFrame(testutil.ChurnFrame(800, 1), 0.2, 42)

	res, err := tr.Train(context.Background(), trainSet, testSet)
	require.NoError(t, err)

	assert.Greater(t, res.AUC, 0.7)
	assert.Greater(t, res.Accuracy, 0.6)
	assert.Greater(t, res.Recall, 0.0)
	assert.LessOrEqual(t, res.Recall, 1.0)
	assert.Equal(t, 640, res.TrainRows)
	assert.Equal(t, 160, res.TestRows)
	assert.Equal(t, res.BestIteration+1, res.Trees)
	assert.Equal(t, len(res.FPR), len(res.TPR))
	assert.NotEmpty(t, res.RunID)

	ctx := context.Background()
	blob, err := store.Load(ctx, artifact.KindPreprocessor)
	require.NoError(t, err)
	var pre pipeline.Preprocessor
	preEnv, err := artifact.Unseal(blob, artifact.KindPreprocessor, &pre)
	require.NoError(t, err)

	blob, err = store.Load(ctx, artifact.KindModel)
	require.NoError(t, err)
	var gbm model.GradientBoostingClassifier
	modelEnv, err := artifact.Unseal(blob, artifact.KindModel, &gbm)
	require.NoError(t, err)

	assert.Equal(t, res.RunID, preEnv.RunID)
	assert.Equal(t, res.RunID, modelEnv.RunID)
	assert.Equal(t, pipeline.ChurnSchema.Fingerprint(), modelEnv.SchemaFingerprint)
	assert.Equal(t, pre.OutputWidth(), gbm.NFeatures)
	assert.Len(t, gbm.Trees, res.Trees)
}

func TestTrain_InvalidData(t *testing.T) {
	full := testutil.ChurnFrame(200, 2)
	label, err := full.Column(pipeline.LabelColumn)
	require.NoError(t, err)
	var zeros []int
	for i, l := range label {
		if l == "0" {
			zeros = append(zeros, i)
		}
	}
	single := full.Subset(zeros)

	badLabel := full.Subset([]int{0, 1, 2, 3})
	badRows := make([][]string, badLabel.Len())
	li := len(pipeline.ChurnSchema.Fields)
	for i, r := range badLabel.Rows {
		badRows[i] = append([]string(nil), r...)
		badRows[i][li] = "yes"
	}
	badLabel, err = data.NewFrame(full.Header, badRows)
	require.NoError(t, err)

	tests := []struct {
		name  string
		train *data.Frame
		want  error
	}{
		{"empty", full.Subset(nil), errs.ErrTrainingDataInvalid},
		{"single class", single, errs.ErrTrainingDataInvalid},
		{"bad label", badLabel, errs.ErrTrainingDataInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTrainer(t)
			_, err := tr.Train(context.Background(), tt.train, full)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestTrain_MissingColumn(t *testing.T) {
	full := testutil.ChurnFrame(50, 3)
	cols := append([]string{}, full.Header[1:]...)
	partial, err := full.Select(cols...)
	require.NoError(t, err)

	tr, _ := newTrainer(t)
	_, err = tr.Train(context.Background(), partial, full)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "mou_Mean")
}

func TestIngestThenTrainFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := artifact.NewFileStore(dir)
	require.NoError(t, err)

	raw := testutil.ChurnFrame(500, 4)
	res, err := Ingest(ctx, raw, pipeline.ChurnSchema, store, dir, 0.2, 42, nil)
	require.NoError(t, err)
	assert.Equal(t, 400, res.TrainRows)
	assert.Equal(t, 100, res.TestRows)
	assert.FileExists(t, res.TrainPath)
	assert.FileExists(t, res.TestPath)

	// the reference dataset is the test split
	blob, err := store.Load(ctx, artifact.KindReferenceDataset)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(res.TestPath)
	require.NoError(t, err)
	assert.Equal(t, onDisk, blob)
	ref, err := data.ReadCSV(ctx, bytes.NewReader(blob))
	require.NoError(t, err)
	assert.False(t, ref.Has("Customer_ID"))
	assert.True(t, ref.Has(pipeline.LabelColumn))

	tr := NewTrainer(store, fastOptions...)
	result, err := tr.TrainFiles(ctx, res.TrainPath, res.TestPath)
	require.NoError(t, err)
	assert.Equal(t, 400, result.TrainRows)
}

func TestIngest_Errors(t *testing.T) {
	ctx := context.Background()
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)

	raw := testutil.ChurnFrame(20, 5)
	noLabel, err := raw.Select(pipeline.ChurnSchema.Names()...)
	require.NoError(t, err)
	_, err = Ingest(ctx, noLabel, pipeline.ChurnSchema, store, t.TempDir(), 0.2, 42, nil)
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))

	_, err = Ingest(ctx, raw.Subset(nil), pipeline.ChurnSchema, store, t.TempDir(), 0.2, 42, nil)
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}

func TestTrainFiles_MissingFile(t *testing.T) {
	tr, _ := newTrainer(t)
	_, err := tr.TrainFiles(context.Background(), "/nonexistent/train.csv", "/nonexistent/test.csv")
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}

func TestLabels(t *testing.T) {
	f, err := data.NewFrame([]string{"churn"}, [][]string{{"0"}, {"1"}, {"1.0"}})
	require.NoError(t, err)
	y, err := Labels(f, "churn")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1}, y)
	assert.Equal(t, []int{0, 1, 1}, IntLabels(y))

	_, err = Labels(f, "nope")
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}
