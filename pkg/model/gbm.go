package model

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/loss"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// Threshold is the probability above which a row is labelled positive.
const Threshold = 0.5

// GradientBoostingClassifier is a binary classifier built from an additive
// ensemble of regression trees fit to the gradient of the logistic loss.
// Split finding works on per-feature histograms.
type GradientBoostingClassifier struct {
	NEstimators         int     // maximum number of boosting rounds
	LearningRate        float64 // shrinkage applied to every leaf
	MaxDepth            int     // maximum tree depth (root depth = 0)
	Subsample           float64 // fraction of rows sampled per round
	ColsampleByTree     float64 // fraction of features sampled per tree
	Lambda              float64 // L2 penalty on leaf weights
	MinChildWeight      float64 // minimum hessian sum in a child
	MaxBin              int     // maximum histogram bins per feature
	EarlyStoppingRounds int     // 0 => train every round
	RandomState         int64

	// fitted state
	BaseMargin    float64
	Trees         []Tree
	NFeatures     int
	BestIteration int       // index of the round with the best validation loss
	BestScore     float64   // validation log-loss at BestIteration
	EvalHistory   []float64 // validation log-loss per round
	Fitted        bool

	logger *slog.Logger
}

// Option functional config
type Option func(*GradientBoostingClassifier)

func WithNEstimators(n int) Option { return func(m *GradientBoostingClassifier) { m.NEstimators = n } }
func WithLearningRate(eta float64) Option {
	return func(m *GradientBoostingClassifier) { m.LearningRate = eta }
}
func WithMaxDepth(d int) Option { return func(m *GradientBoostingClassifier) { m.MaxDepth = d } }
func WithSubsample(r float64) Option {
	return func(m *GradientBoostingClassifier) { m.Subsample = r }
}
func WithColsampleByTree(r float64) Option {
	return func(m *GradientBoostingClassifier) { m.ColsampleByTree = r }
}
func WithLambda(l float64) Option { return func(m *GradientBoostingClassifier) { m.Lambda = l } }
func WithMinChildWeight(w float64) Option {
	return func(m *GradientBoostingClassifier) { m.MinChildWeight = w }
}
func WithMaxBin(n int) Option { return func(m *GradientBoostingClassifier) { m.MaxBin = n } }
func WithEarlyStoppingRounds(n int) Option {
	return func(m *GradientBoostingClassifier) { m.EarlyStoppingRounds = n }
}
func WithRandomState(seed int64) Option {
	return func(m *GradientBoostingClassifier) { m.RandomState = seed }
}
func WithLogger(l *slog.Logger) Option {
	return func(m *GradientBoostingClassifier) { m.logger = l }
}

// NewGradientBoostingClassifier returns a classifier with the churn model
// defaults.
func NewGradientBoostingClassifier(opts ...Option) *GradientBoostingClassifier {
	m := &GradientBoostingClassifier{
		NEstimators:         1000,
		LearningRate:        0.01,
		MaxDepth:            6,
		Subsample:           0.8,
		ColsampleByTree:     0.7,
		Lambda:              1,
		MinChildWeight:      1,
		MaxBin:              256,
		EarlyStoppingRounds: 50,
		RandomState:         42,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit trains on X and 0/1 labels y for NEstimators rounds.
func (m *GradientBoostingClassifier) Fit(X [][]float64, y []float64) error {
	return m.FitEval(context.Background(), X, y, nil, nil)
}

// FitEval trains on (X, y) and, when Xval is non-empty, monitors validation
// log-loss after every round. Training stops once the loss has not improved
// for EarlyStoppingRounds rounds and the ensemble is truncated to the best
// round.
func (m *GradientBoostingClassifier) FitEval(ctx context.Context, X [][]float64, y []float64, Xval [][]float64, yval []float64) error {
	if err := m.validate(X, y, Xval, yval); err != nil {
		return err
	}
	log := m.logger
	if log == nil {
		log = slog.Default()
	}

	n, p := len(X), len(X[0])
	mapper, err := newBinMapper(ctx, X, m.MaxBin)
	if err != nil {
		return errors.Wrap(err, "gbm: binning")
	}
	bins := mapper.transform(X)

	m.NFeatures = p
	m.BaseMargin = loss.Logit(stats.Mean(y))
	m.Trees = m.Trees[:0]
	m.EvalHistory = m.EvalHistory[:0]
	m.BestIteration = 0
	m.BestScore = math.Inf(1)
	m.Fitted = false

	margin := filled(n, m.BaseMargin)
	valMargin := filled(len(Xval), m.BaseMargin)
	valProba := make([]float64, len(Xval))
	grad := make([]float64, n)
	hess := make([]float64, n)
	rng := rand.New(rand.NewSource(m.RandomState))

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	nCols := max(1, int(math.Round(m.ColsampleByTree*float64(p))))
	if nCols > p {
		nCols = p
	}

	for round := 0; round < m.NEstimators; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		loss.GradHess(y, margin, grad, hess)

		rows := all
		if m.Subsample < 1 {
			rows = make([]int, 0, int(float64(n)*m.Subsample)+1)
			for i := 0; i < n; i++ {
				if rng.Float64() < m.Subsample {
					rows = append(rows, i)
				}
			}
			if len(rows) == 0 {
				rows = all
			}
		}
		features := rng.Perm(p)[:nCols]
		sort.Ints(features)

		b := &treeBuilder{
			bins:           bins,
			mapper:         mapper,
			grad:           grad,
			hess:           hess,
			features:       features,
			maxDepth:       m.MaxDepth,
			lambda:         m.Lambda,
			minChildWeight: m.MinChildWeight,
			eta:            m.LearningRate,
		}
		tree, err := b.build(ctx, rows)
		if err != nil {
			return errors.Wrapf(err, "gbm: round %d", round)
		}
		m.Trees = append(m.Trees, *tree)
		for i := range margin {
			margin[i] += tree.predictBinned(bins, mapper, i)
		}

		if len(Xval) == 0 {
			m.BestIteration = round
			continue
		}
		for i, x := range Xval {
			valMargin[i] += tree.predict(x)
			valProba[i] = loss.Sigmoid(valMargin[i])
		}
		score := loss.LogLoss(yval, valProba)
		m.EvalHistory = append(m.EvalHistory, score)
		if score < m.BestScore {
			m.BestScore = score
			m.BestIteration = round
		}
		if round%100 == 0 {
			log.Debug("gbm round", "round", round, "val_logloss", score, "best", m.BestIteration)
		}
		if m.EarlyStoppingRounds > 0 && round-m.BestIteration >= m.EarlyStoppingRounds {
			log.Debug("gbm early stop", "round", round, "best_iteration", m.BestIteration, "best_logloss", m.BestScore)
			break
		}
	}

	m.Trees = m.Trees[:m.BestIteration+1]
	m.Fitted = true
	return nil
}

func (m *GradientBoostingClassifier) validate(X [][]float64, y []float64, Xval [][]float64, yval []float64) error {
	if len(X) == 0 {
		return errors.Wrap(errs.ErrTrainingDataInvalid, "gbm: empty X")
	}
	if len(y) != len(X) {
		return errors.Wrapf(errs.ErrTrainingDataInvalid, "gbm: %d rows but %d labels", len(X), len(y))
	}
	if m.NEstimators < 1 || m.MaxBin < 2 || m.MaxBin > math.MaxUint16 {
		return errors.Errorf("gbm: invalid configuration n_estimators=%d max_bin=%d", m.NEstimators, m.MaxBin)
	}
	p := len(X[0])
	if p == 0 {
		return errors.Wrap(errs.ErrTrainingDataInvalid, "gbm: no features")
	}
	for i, row := range X {
		if len(row) != p {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "gbm: row %d has %d features, want %d", i, len(row), p)
		}
	}
	var pos int
	for i, v := range y {
		switch v {
		case 1:
			pos++
		case 0:
		default:
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "gbm: label %d is %v, want 0 or 1", i, v)
		}
	}
	if pos == 0 || pos == len(y) {
		return errors.Wrap(errs.ErrTrainingDataInvalid, "gbm: labels are single-class")
	}
	if len(yval) != len(Xval) {
		return errors.Wrapf(errs.ErrTrainingDataInvalid, "gbm: %d validation rows but %d labels", len(Xval), len(yval))
	}
	for i, row := range Xval {
		if len(row) != p {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "gbm: validation row %d has %d features, want %d", i, len(row), p)
		}
	}
	return nil
}

// margin sums the base margin and every tree's output for x.
func (m *GradientBoostingClassifier) margin(x []float64) float64 {
	s := m.BaseMargin
	for i := range m.Trees {
		s += m.Trees[i].predict(x)
	}
	return s
}

// Score returns p(y=1) for one row.
func (m *GradientBoostingClassifier) Score(x []float64) (float64, error) {
	if !m.Fitted {
		return 0, errors.Wrap(errs.ErrModelUnavailable, "gbm: not fitted")
	}
	if len(x) != m.NFeatures {
		return 0, errors.Wrapf(errs.ErrShapeMismatch, "gbm: got %d features, want %d", len(x), m.NFeatures)
	}
	return loss.Sigmoid(m.margin(x)), nil
}

// PredictProba returns p(y=1) for every row. Rows of the wrong width yield NaN.
func (m *GradientBoostingClassifier) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		p, err := m.Score(x)
		if err != nil {
			p = math.NaN()
		}
		out[i] = p
	}
	return out
}

// Predict returns 0/1 labels thresholded at Threshold.
func (m *GradientBoostingClassifier) Predict(X [][]float64) []float64 {
	proba := m.PredictProba(X)
	out := make([]float64, len(proba))
	for i, p := range BinaryPredFromProba(proba, Threshold) {
		out[i] = float64(p)
	}
	return out
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
