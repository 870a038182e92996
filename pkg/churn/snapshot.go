package churn

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// Snapshot is everything one prediction reads. It is never mutated after
// construction; the Engine replaces it whole.
type Snapshot struct {
	Profile      *Profile
	Preprocessor *pipeline.Preprocessor
	Model        model.Scorer

	RunID             string
	SchemaFingerprint string
	LoadedAt          time.Time
}

// NewSnapshot pairs the three serving inputs. The preprocessor must have
// been fitted on the profile's schema.
func NewSnapshot(profile *Profile, pre *pipeline.Preprocessor, m model.Scorer, runID string) (*Snapshot, error) {
	if profile == nil || pre == nil || m == nil {
		return nil, errors.Wrap(errs.ErrModelUnavailable, "incomplete snapshot")
	}
	fp := profile.Schema().Fingerprint()
	if pre.SchemaFingerprint != fp {
		return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch,
			"preprocessor fitted on schema %.12s, serving schema is %.12s", pre.SchemaFingerprint, fp)
	}
	return &Snapshot{
		Profile:           profile,
		Preprocessor:      pre,
		Model:             m,
		RunID:             runID,
		SchemaFingerprint: fp,
		LoadedAt:          time.Now().UTC(),
	}, nil
}

// LoadSnapshot reads the reference dataset, preprocessor and model from
// store. The reference dataset is read first so a missing one fails with
// ErrDataUnavailable before any model is touched. The preprocessor and model
// must come from the same training run against schema.
func LoadSnapshot(ctx context.Context, store artifact.Store, schema *pipeline.Schema) (*Snapshot, error) {
	profile, err := LoadProfile(ctx, store, schema)
	if err != nil {
		return nil, err
	}

	pre := &pipeline.Preprocessor{}
	preEnv, err := loadSealed(ctx, store, artifact.KindPreprocessor, pre)
	if err != nil {
		return nil, err
	}
	gbm := &model.GradientBoostingClassifier{}
	modelEnv, err := loadSealed(ctx, store, artifact.KindModel, gbm)
	if err != nil {
		return nil, err
	}

	fp := schema.Fingerprint()
	for _, env := range []*artifact.Envelope{preEnv, modelEnv} {
		if env.SchemaFingerprint != fp {
			return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch,
				"%s was fitted on schema %.12s, serving schema is %.12s", env.Kind, env.SchemaFingerprint, fp)
		}
	}
	if preEnv.RunID != modelEnv.RunID {
		return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch,
			"preprocessor from run %s, model from run %s", preEnv.RunID, modelEnv.RunID)
	}
	if !gbm.Fitted || !pre.Fitted {
		return nil, errors.Wrap(errs.ErrModelUnavailable, "stored artifacts are not fitted")
	}
	if gbm.NFeatures != pre.OutputWidth() {
		return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch,
			"model expects %d features, preprocessor emits %d", gbm.NFeatures, pre.OutputWidth())
	}
	return NewSnapshot(profile, pre, gbm, modelEnv.RunID)
}

// LoadProfile builds the fallback profile from the stored reference dataset.
func LoadProfile(ctx context.Context, store artifact.Store, schema *pipeline.Schema) (*Profile, error) {
	refBlob, err := store.Load(ctx, artifact.KindReferenceDataset)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, errors.Wrapf(errs.ErrDataUnavailable, "load reference dataset: %v", err)
		}
		return nil, errors.Wrap(err, "load reference dataset")
	}
	ref, err := data.ReadCSV(ctx, bytes.NewReader(refBlob))
	if err != nil {
		return nil, errors.Wrap(err, "parse reference dataset")
	}
	return BuildProfile(schema, ref)
}

func loadSealed(ctx context.Context, store artifact.Store, kind artifact.Kind, v any) (*artifact.Envelope, error) {
	blob, err := store.Load(ctx, kind)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrModelUnavailable, "load %s: %v", kind, err)
	}
	return artifact.Unseal(blob, kind, v)
}
