package stats

import (
	"fmt"
)

// StandardScaler standardizes columns to unit variance and, unless
// WithMean is false, to zero mean. Columns with zero variance keep a scale
// of 1 so they pass through unscaled.
type StandardScaler struct {
	WithMean bool
	Mean     []float64
	Scale    []float64
	Fitted   bool
}

// ScalerOption configures a StandardScaler.
type ScalerOption func(*StandardScaler)

// WithoutCentering leaves the column mean in place; only the variance is normalized.
func WithoutCentering() ScalerOption { return func(s *StandardScaler) { s.WithMean = false } }

func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{WithMean: true}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("scaler: empty X")
	}
	r, c := len(X), len(X[0])
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if len(X[i]) != c {
				return fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(X[i]), c)
			}
			col[i] = X[i][j]
		}
		m, sd := PopMeanStd(col)
		s.Mean[j] = m
		if sd == 0 {
			sd = 1
		}
		s.Scale[j] = sd
	}
	s.Fitted = true
	return nil
}

// TransformRow scales a single row into dst, which must have the fitted width.
func (s *StandardScaler) TransformRow(dst, row []float64) error {
	if !s.Fitted {
		return fmt.Errorf("scaler: not fitted")
	}
	if len(row) != len(s.Scale) || len(dst) != len(s.Scale) {
		return fmt.Errorf("scaler: got %d columns, want %d", len(row), len(s.Scale))
	}
	for j, v := range row {
		if s.WithMean {
			v -= s.Mean[j]
		}
		dst[j] = v / s.Scale[j]
	}
	return nil
}

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	Y := make([][]float64, len(X))
	for i := range X {
		Y[i] = make([]float64, len(X[i]))
		if err := s.TransformRow(Y[i], X[i]); err != nil {
			return nil, err
		}
	}
	return Y, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
