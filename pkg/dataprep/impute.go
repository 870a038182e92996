package dataprep

import (
	"fmt"
	"math"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// MedianImputer replaces NaN in each numeric column with the column median
// learned at fit time.
type MedianImputer struct {
	Fill []float64
}

func (m *MedianImputer) Fit(X [][]float64) error {
	cols, err := columns(X)
	if err != nil {
		return fmt.Errorf("median imputer: %w", err)
	}
	m.Fill = make([]float64, len(cols))
	for j, col := range cols {
		med := stats.NanMedian(col)
		if math.IsNaN(med) {
			return fmt.Errorf("median imputer: column %d has no observed values", j)
		}
		m.Fill[j] = med
	}
	return nil
}

// TransformRow fills NaN cells of row into dst.
func (m *MedianImputer) TransformRow(dst, row []float64) error {
	if len(row) != len(m.Fill) {
		return fmt.Errorf("median imputer: got %d columns, want %d", len(row), len(m.Fill))
	}
	for j, v := range row {
		if math.IsNaN(v) {
			v = m.Fill[j]
		}
		dst[j] = v
	}
	return nil
}

// ModeImputer replaces missing categorical cells with the most frequent
// value seen at fit time. Missingness comes from a mask parallel to the
// cells, so an empty string is an ordinary level. A nil mask or mask row
// means nothing in it is missing.
type ModeImputer struct {
	Fill []string
}

func (m *ModeImputer) Fit(X [][]string, missing [][]bool) error {
	if len(X) == 0 {
		return fmt.Errorf("mode imputer: empty X")
	}
	if missing != nil && len(missing) != len(X) {
		return fmt.Errorf("mode imputer: mask has %d rows, want %d", len(missing), len(X))
	}
	c := len(X[0])
	m.Fill = make([]string, c)
	for j := 0; j < c; j++ {
		observed := make([]string, 0, len(X))
		for i := range X {
			if len(X[i]) != c {
				return fmt.Errorf("mode imputer: row %d has %d columns, want %d", i, len(X[i]), c)
			}
			if !maskAt(missing, i, j) {
				observed = append(observed, X[i][j])
			}
		}
		mode, ok := stats.Mode(observed)
		if !ok {
			return fmt.Errorf("mode imputer: column %d has no observed values", j)
		}
		m.Fill[j] = mode
	}
	return nil
}

func (m *ModeImputer) TransformRow(dst, row []string, missing []bool) error {
	if len(row) != len(m.Fill) {
		return fmt.Errorf("mode imputer: got %d columns, want %d", len(row), len(m.Fill))
	}
	for j, v := range row {
		if j < len(missing) && missing[j] {
			v = m.Fill[j]
		}
		dst[j] = v
	}
	return nil
}

func maskAt(mask [][]bool, i, j int) bool {
	return mask != nil && j < len(mask[i]) && mask[i][j]
}

// columns transposes X into per-column slices, checking the row widths.
func columns(X [][]float64) ([][]float64, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("empty X")
	}
	c := len(X[0])
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = make([]float64, len(X))
	}
	for i, row := range X {
		if len(row) != c {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), c)
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return cols, nil
}
