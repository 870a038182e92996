package churn

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/testutil"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/train"
)

// trainedStore runs ingest and training into a fresh file store.
func trainedStore(t *testing.T) *artifact.FileStore {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	store, err := artifact.NewFileStore(dir)
	require.NoError(t, err)

	res, err := train.Ingest(ctx, testutil.ChurnFrame(500, 1), pipeline.ChurnSchema, store, dir, 0.2, 42, nil)
	require.NoError(t, err)
	tr := train.NewTrainer(store,
		model.WithNEstimators(40),
		model.WithLearningRate(0.3),
		model.WithMaxDepth(3),
		model.WithEarlyStoppingRounds(0),
	)
	_, err = tr.TrainFiles(ctx, res.TrainPath, res.TestPath)
	require.NoError(t, err)
	return store
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	snap, err := LoadSnapshot(context.Background(), trainedStore(t), pipeline.ChurnSchema)
	require.NoError(t, err)
	return NewEngine(WithSnapshot(snap))
}

// handProfile has mou_Mean=300, rev_Mean=50 and 1 for every other number.
func handProfile(t *testing.T) *Profile {
	t.Helper()
	values := map[string]any{}
	for _, f := range pipeline.ChurnSchema.Fields {
		if f.Kind == pipeline.Numeric {
			values[f.Name] = 1.0
		} else {
			values[f.Name] = "N"
		}
	}
	values["mou_Mean"] = 300.0
	values["rev_Mean"] = 50.0
	p, err := NewProfile(pipeline.ChurnSchema, values)
	require.NoError(t, err)
	return p
}

func TestBuildProfile(t *testing.T) {
	f, err := data.NewFrame(
		[]string{"x", "y", "c"},
		[][]string{
			{"1", "NA", "B"},
			{"3", "2", "A"},
			{"NaN", "4", "A"},
			{"10", "", "B"},
			{"2", "6", ""},
		})
	require.NoError(t, err)
	schema := pipeline.NewSchema(
		pipeline.Field{Name: "x", Kind: pipeline.Numeric},
		pipeline.Field{Name: "y", Kind: pipeline.Numeric},
		pipeline.Field{Name: "c", Kind: pipeline.Categorical},
	)
	p, err := BuildProfile(schema, f)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"x": 2.5, "y": 4.0, "c": "B"}, p.Map())
}

func TestBuildProfile_Errors(t *testing.T) {
	schema := pipeline.NewSchema(
		pipeline.Field{Name: "x", Kind: pipeline.Numeric},
		pipeline.Field{Name: "c", Kind: pipeline.Categorical},
	)
	empty, err := data.NewFrame([]string{"x", "c"}, nil)
	require.NoError(t, err)
	noCol, err := data.NewFrame([]string{"x"}, [][]string{{"1"}})
	require.NoError(t, err)
	allMissing, err := data.NewFrame([]string{"x", "c"}, [][]string{{"NA", "a"}, {"", "b"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		f    *data.Frame
		msg  string
	}{
		{"nil", nil, "empty"},
		{"empty", empty, "empty"},
		{"missing column", noCol, `"c"`},
		{"no numeric values", allMissing, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildProfile(schema, tt.f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReconstruct_EndToEnd(t *testing.T) {
	p := handProfile(t)
	row, err := Reconstruct(Record{"mou_Mean": 0}, p)
	require.NoError(t, err)

	mou, _ := row.Get(pipeline.ChurnSchema, "mou_Mean")
	assert.Equal(t, 0.0, mou.Num)
	for i, f := range pipeline.ChurnSchema.Fields {
		if f.Name == "mou_Mean" {
			continue
		}
		want, _ := p.Value(f.Name)
		assert.Equal(t, want, row.Values[i], f.Name)
	}
	assert.Equal(t, 50.0, row.Derived.RevPerMou)
	assert.Equal(t, 1.0, row.Derived.OverageRatio)
	assert.Equal(t, 0.5, row.Derived.EquipmentAgeRatio)
	assert.Len(t, row.Values, 27)
}

func TestReconstruct_SmoothedRatios(t *testing.T) {
	row, err := Reconstruct(Record{"mou_Mean": 0.0, "rev_Mean": 10.0, "ovrmou_Mean": 0, "eqpdays": 365, "months": 0}, handProfile(t))
	require.NoError(t, err)
	assert.Equal(t, 10.0, row.Derived.RevPerMou)
	assert.Equal(t, 0.0, row.Derived.OverageRatio)
	assert.Equal(t, 365.0, row.Derived.EquipmentAgeRatio)
	assert.Equal(t, map[string]float64{
		"rev_per_mou":         10,
		"overage_ratio":       0,
		"equipment_age_ratio": 365,
	}, row.Derived.Map())
}

func TestReconstruct_OverrideAnyValue(t *testing.T) {
	p := handProfile(t)
	row, err := Reconstruct(Record{
		"mou_Mean":   -1e9,
		"creditcd":   "anything",
		"hnd_price":  json.Number("149.99"),
		"months":     "12",
		"models":     int64(3),
		"refurb_new": "",
	}, p)
	require.NoError(t, err)
	get := func(name string) pipeline.Value {
		v, ok := row.Get(pipeline.ChurnSchema, name)
		require.True(t, ok)
		return v
	}
	assert.Equal(t, -1e9, get("mou_Mean").Num)
	assert.Equal(t, "anything", get("creditcd").Str)
	assert.Equal(t, 149.99, get("hnd_price").Num)
	assert.Equal(t, 12.0, get("months").Num)
	assert.Equal(t, 3.0, get("models").Num)
	assert.Equal(t, "", get("refurb_new").Str)
	assert.False(t, get("refurb_new").IsMissing())
}

func TestReconstruct_TrimsCategories(t *testing.T) {
	p := handProfile(t)
	row, err := Reconstruct(Record{"creditcd": " Y\t"}, p)
	require.NoError(t, err)
	v, _ := row.Get(pipeline.ChurnSchema, "creditcd")
	assert.Equal(t, "Y", v.Str)
}

func TestReconstruct_NilMeansNotSupplied(t *testing.T) {
	p := handProfile(t)
	row, err := Reconstruct(Record{"rev_Mean": nil}, p)
	require.NoError(t, err)
	assert.InDelta(t, 50.0/301, row.Derived.RevPerMou, 1e-12)
}

func TestReconstruct_KindMismatch(t *testing.T) {
	p := handProfile(t)
	tests := []struct {
		name string
		rec  Record
	}{
		{"string for numeric", Record{"mou_Mean": "lots"}},
		{"number for categorical", Record{"creditcd": 1}},
		{"bool for numeric", Record{"months": true}},
		{"non finite", Record{"months": "NaN"}},
		{"nested", Record{"eqpdays": map[string]any{"v": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(tt.rec, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrSchemaMismatch))
		})
	}
}

func TestReconstruct_UnknownFieldIgnored(t *testing.T) {
	p := handProfile(t)
	base, err := Reconstruct(Record{"mou_Mean": 10}, p)
	require.NoError(t, err)
	extra, err := Reconstruct(Record{"mou_Mean": 10, "favourite_colour": "teal", "rev_per_mou": 9e9}, p)
	require.NoError(t, err)
	assert.Equal(t, base, extra)
}

func TestReconstruct_NoProfile(t *testing.T) {
	_, err := Reconstruct(Record{}, nil)
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}

func TestNewProfile_Incomplete(t *testing.T) {
	_, err := NewProfile(pipeline.ChurnSchema, map[string]any{"mou_Mean": 1.0})
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}

func TestEngine_FallbackMatchesExplicitProfile(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	implicit, err := e.Predict(ctx, Record{})
	require.NoError(t, err)
	explicit, err := e.Predict(ctx, Record(e.Snapshot().Profile.Map()))
	require.NoError(t, err)
	assert.Equal(t, implicit, explicit)

	partial, err := e.Predict(ctx, Record{"eqpdays": 1400})
	require.NoError(t, err)
	full := e.Snapshot().Profile.Map()
	full["eqpdays"] = 1400.0
	explicit, err = e.Predict(ctx, Record(full))
	require.NoError(t, err)
	assert.Equal(t, partial, explicit)
}

func TestEngine_Idempotent(t *testing.T) {
	e := newEngine(t)
	rec := Record{"mou_Mean": 12.5, "creditcd": "N", "months": 3}
	a, err := e.Predict(context.Background(), rec)
	require.NoError(t, err)
	b, err := e.Predict(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, []string{LabelChurn, LabelNotChurn}, a.Label)
	assert.Equal(t, a.Churn, a.Label == LabelChurn)
	assert.Equal(t, a.Churn, a.Probability > 0.5)
}

func TestEngine_UnknownCategory(t *testing.T) {
	e := newEngine(t)
	p, err := e.Predict(context.Background(), Record{"creditcd": "Z", "refurb_new": "unheard-of"})
	require.NoError(t, err)
	assert.Contains(t, []string{LabelChurn, LabelNotChurn}, p.Label)
}

func TestEngine_EmptyCategoryScoresAsUnknown(t *testing.T) {
	e := newEngine(t)
	empty, err := e.Predict(context.Background(), Record{"creditcd": ""})
	require.NoError(t, err)
	unknown, err := e.Predict(context.Background(), Record{"creditcd": "Z"})
	require.NoError(t, err)
	assert.Equal(t, unknown, empty)
}

func TestEngine_PaddedCategoryMatchesTrained(t *testing.T) {
	e := newEngine(t)
	padded, err := e.Predict(context.Background(), Record{"creditcd": " Y "})
	require.NoError(t, err)
	plain, err := e.Predict(context.Background(), Record{"creditcd": "Y"})
	require.NoError(t, err)
	assert.Equal(t, plain, padded)
}

func TestEngine_ExtraFieldDoesNotChangeOutput(t *testing.T) {
	e := newEngine(t)
	a, err := e.Predict(context.Background(), Record{"months": 30})
	require.NoError(t, err)
	b, err := e.Predict(context.Background(), Record{"months": 30, "zip_code": "90210"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngine_DerivedFeaturesReported(t *testing.T) {
	e := newEngine(t)
	p, err := e.Predict(context.Background(), Record{"mou_Mean": 0, "rev_Mean": 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Derived.RevPerMou)
	assert.Equal(t, e.Snapshot().RunID, p.RunID)
}

func TestEngine_NonFiniteDerivedEncodeAsNull(t *testing.T) {
	e := newEngine(t)
	p, err := e.Predict(context.Background(), Record{
		"mou_Mean": -1, "rev_Mean": 10, "ovrmou_Mean": 5, "eqpdays": 100, "months": -1,
	})
	require.NoError(t, err)
	assert.True(t, math.IsInf(p.Derived.RevPerMou, 1))

	b, err := json.Marshal(p)
	require.NoError(t, err)
	var out struct {
		Derived map[string]*float64 `json:"derived"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Nil(t, out.Derived["rev_per_mou"])
	assert.Nil(t, out.Derived["overage_ratio"])
	assert.Nil(t, out.Derived["equipment_age_ratio"])
}

func TestDerived_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Derived{RevPerMou: 0.5, OverageRatio: math.NaN(), EquipmentAgeRatio: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rev_per_mou": 0.5, "overage_ratio": null, "equipment_age_ratio": 2}`, string(b))
}

func TestEngine_NoSnapshot(t *testing.T) {
	_, err := NewEngine().Predict(context.Background(), Record{})
	assert.True(t, errors.Is(err, errs.ErrModelUnavailable))
}

func TestEngine_CanceledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Predict(ctx, Record{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_SchemaMismatchSurfaces(t *testing.T) {
	e := newEngine(t)
	_, err := e.Predict(context.Background(), Record{"months": "many"})
	assert.True(t, errors.Is(err, errs.ErrSchemaMismatch))
	assert.True(t, errs.IsClientError(err))
}

func TestLoadSnapshot_MissingReferenceDataset(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = LoadSnapshot(context.Background(), store, pipeline.ChurnSchema)
	assert.True(t, errors.Is(err, errs.ErrDataUnavailable))
}

func TestLoadSnapshot_MissingModel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := artifact.NewFileStore(dir)
	require.NoError(t, err)
	_, err = train.Ingest(ctx, testutil.ChurnFrame(50, 2), pipeline.ChurnSchema, store, dir, 0.2, 42, nil)
	require.NoError(t, err)

	_, err = LoadSnapshot(ctx, store, pipeline.ChurnSchema)
	assert.True(t, errors.Is(err, errs.ErrModelUnavailable))
}

func TestLoadSnapshot_RejectsMismatchedPair(t *testing.T) {
	ctx := context.Background()
	store := trainedStore(t)

	// replace the model with one sealed under a different run
	blob, err := store.Load(ctx, artifact.KindModel)
	require.NoError(t, err)
	var gbm model.GradientBoostingClassifier
	_, err = artifact.Unseal(blob, artifact.KindModel, &gbm)
	require.NoError(t, err)
	other, err := artifact.Seal(artifact.KindModel, pipeline.ChurnSchema.Fingerprint(), artifact.NewRunID(), &gbm)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, artifact.KindModel, other))

	_, err = LoadSnapshot(ctx, store, pipeline.ChurnSchema)
	assert.True(t, errors.Is(err, errs.ErrArtifactVersionMismatch))
}

func TestLoadSnapshot_RejectsOtherSchema(t *testing.T) {
	ctx := context.Background()
	store := trainedStore(t)
	reordered := pipeline.NewSchema(append(
		[]pipeline.Field{pipeline.ChurnSchema.Fields[1], pipeline.ChurnSchema.Fields[0]},
		pipeline.ChurnSchema.Fields[2:]...)...)

	_, err := LoadSnapshot(ctx, store, reordered)
	assert.True(t, errors.Is(err, errs.ErrArtifactVersionMismatch))
}

func TestEngine_ReloadKeepsOldSnapshotOnFailure(t *testing.T) {
	ctx := context.Background()
	store := trainedStore(t)
	e := NewEngine()
	require.NoError(t, e.Reload(ctx, store, pipeline.ChurnSchema))
	first := e.Snapshot()
	require.NotNil(t, first)

	require.NoError(t, store.Save(ctx, artifact.KindModel, []byte("garbage")))
	err := e.Reload(ctx, store, pipeline.ChurnSchema)
	assert.True(t, errors.Is(err, errs.ErrModelUnavailable))
	assert.Same(t, first, e.Snapshot())
}

func TestEngine_ConcurrentPredictDuringSwap(t *testing.T) {
	ctx := context.Background()
	store := trainedStore(t)
	a, err := LoadSnapshot(ctx, store, pipeline.ChurnSchema)
	require.NoError(t, err)
	b, err := LoadSnapshot(ctx, store, pipeline.ChurnSchema)
	require.NoError(t, err)

	e := NewEngine(WithSnapshot(a))
	want, err := e.Predict(ctx, Record{"months": 7})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := e.Predict(ctx, Record{"months": 7})
				assert.NoError(t, err)
				assert.Equal(t, want.Label, got.Label)
				assert.Equal(t, want.Probability, got.Probability)
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			e.Swap(b)
		} else {
			e.Swap(a)
		}
	}
	wg.Wait()
}

func TestNewSnapshot_Validation(t *testing.T) {
	_, err := NewSnapshot(nil, nil, nil, "")
	assert.True(t, errors.Is(err, errs.ErrModelUnavailable))

	pre := pipeline.NewPreprocessor(pipeline.NewSchema(pipeline.Field{Name: "x", Kind: pipeline.Numeric}))
	_, err = NewSnapshot(handProfile(t), pre, model.NewGradientBoostingClassifier(), "run")
	assert.True(t, errors.Is(err, errs.ErrArtifactVersionMismatch))
}
