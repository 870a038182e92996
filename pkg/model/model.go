package model

import "context"

// Model is a generic supervised learning interface.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Classifier optionally exposes probabilities.
type Classifier interface {
	Model
	PredictProba(X [][]float64) []float64 // returns p(y=1) for binary classifiers
}

// EvalFitter trains against a held-out set that decides when to stop.
type EvalFitter interface {
	FitEval(ctx context.Context, X [][]float64, y []float64, Xval [][]float64, yval []float64) error
}

// Scorer scores a single row, rejecting rows it cannot score.
type Scorer interface {
	Score(x []float64) (float64, error)
}

var (
	_ Classifier = (*GradientBoostingClassifier)(nil)
	_ EvalFitter = (*GradientBoostingClassifier)(nil)
	_ Scorer     = (*GradientBoostingClassifier)(nil)
)
