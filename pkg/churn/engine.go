package churn

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/artifact"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/metrics"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/model"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

const (
	LabelChurn    = "Churn"
	LabelNotChurn = "Not Churn"
)

// Prediction is the outcome for one record.
type Prediction struct {
	Label       string  `json:"prediction" yaml:"prediction"`
	Probability float64 `json:"probability" yaml:"probability"`
	Churn       bool    `json:"churn" yaml:"churn"`
	Derived     Derived `json:"derived" yaml:"derived"`
	RunID       string  `json:"run_id" yaml:"run_id"`
}

// Engine serves predictions from the current Snapshot. The snapshot is
// swapped atomically, so concurrent Predict calls each see one complete
// snapshot.
type Engine struct {
	snap   atomic.Pointer[Snapshot]
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithLogger(l *slog.Logger) EngineOption { return func(e *Engine) { e.logger = l } }

// WithSnapshot installs an initial snapshot.
func WithSnapshot(s *Snapshot) EngineOption { return func(e *Engine) { e.snap.Store(s) } }

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Snapshot returns the snapshot currently served, or nil.
func (e *Engine) Snapshot() *Snapshot { return e.snap.Load() }

// Swap installs s and returns the snapshot it replaced.
func (e *Engine) Swap(s *Snapshot) *Snapshot { return e.snap.Swap(s) }

// Reload loads a fresh snapshot from store and swaps it in. On failure the
// current snapshot keeps serving.
func (e *Engine) Reload(ctx context.Context, store artifact.Store, schema *pipeline.Schema) error {
	s, err := LoadSnapshot(ctx, store, schema)
	metrics.ObserveReload(err == nil)
	if err != nil {
		e.logger.Error("artifact reload failed", "kind", errs.Kind(err), "error", err)
		return err
	}
	old := e.Swap(s)
	attrs := []any{"run_id", s.RunID, "schema", s.SchemaFingerprint[:12]}
	if old != nil {
		attrs = append(attrs, "previous_run_id", old.RunID)
	}
	e.logger.Info("artifacts loaded", attrs...)
	return nil
}

// Predict reconstructs the full row for rec, transforms it and scores it.
func (e *Engine) Predict(ctx context.Context, rec Record) (Prediction, error) {
	start := time.Now()
	p, err := e.predict(ctx, rec)
	if err != nil {
		metrics.ObservePredictionError(errs.Kind(err), time.Since(start))
		return Prediction{}, err
	}
	metrics.ObservePrediction(p.Label, time.Since(start))
	return p, nil
}

func (e *Engine) predict(ctx context.Context, rec Record) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	s := e.snap.Load()
	if s == nil {
		return Prediction{}, errors.Wrap(errs.ErrModelUnavailable, "no artifacts loaded")
	}

	row, err := Reconstruct(rec, s.Profile)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "reconstruct")
	}
	e.logger.Debug("reconstructed row",
		"rev_per_mou", row.Derived.RevPerMou,
		"overage_ratio", row.Derived.OverageRatio,
		"equipment_age_ratio", row.Derived.EquipmentAgeRatio,
	)

	x, err := s.Preprocessor.TransformRow(row.Values)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "transform")
	}
	proba, err := s.Model.Score(x)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "score")
	}

	churn := proba > model.Threshold
	label := LabelNotChurn
	if churn {
		label = LabelChurn
	}
	return Prediction{
		Label:       label,
		Probability: proba,
		Churn:       churn,
		Derived:     row.Derived,
		RunID:       s.RunID,
	}, nil
}
