package dataprep

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

const boundsThreshold = 1e-7

// QuantileTransformer maps each numeric column through its empirical CDF and
// then through the standard normal quantile function, so skewed columns come
// out roughly Gaussian. Fitted state is the per-column quantile grid.
type QuantileTransformer struct {
	NQuantiles int
	Subsample  int
	Seed       int64

	References []float64
	Quantiles  [][]float64
}

// QuantileOption configures a QuantileTransformer.
type QuantileOption func(*QuantileTransformer)

func WithNQuantiles(n int) QuantileOption { return func(q *QuantileTransformer) { q.NQuantiles = n } }
func WithSubsample(n int) QuantileOption  { return func(q *QuantileTransformer) { q.Subsample = n } }
func WithQuantileSeed(seed int64) QuantileOption {
	return func(q *QuantileTransformer) { q.Seed = seed }
}

// NewQuantileTransformer returns a transformer with 1000 quantiles fitted on
// at most 100k rows sampled with seed 42.
func NewQuantileTransformer(opts ...QuantileOption) *QuantileTransformer {
	q := &QuantileTransformer{
		NQuantiles: 1000,
		Subsample:  100_000,
		Seed:       42,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

func (q *QuantileTransformer) Fit(X [][]float64) error {
	cols, err := columns(X)
	if err != nil {
		return fmt.Errorf("quantile: %w", err)
	}
	n := len(X)
	nq := q.NQuantiles
	if nq <= 0 {
		return fmt.Errorf("quantile: n_quantiles must be positive, got %d", nq)
	}
	if nq > n {
		nq = n
	}
	q.References = make([]float64, nq)
	if nq == 1 {
		q.References[0] = 0
	} else {
		floats.Span(q.References, 0, 1)
	}

	var rows []int
	if q.Subsample > 0 && n > q.Subsample {
		rows = rand.New(rand.NewSource(q.Seed)).Perm(n)[:q.Subsample]
	}

	q.Quantiles = make([][]float64, len(cols))
	for j, col := range cols {
		sample := col
		if rows != nil {
			sample = make([]float64, len(rows))
			for k, i := range rows {
				sample[k] = col[i]
			}
		}
		sorted := stats.DropNaN(sample)
		if len(sorted) == 0 {
			return fmt.Errorf("quantile: column %d has no observed values", j)
		}
		sort.Float64s(sorted)
		qs := make([]float64, nq)
		for k, r := range q.References {
			qs[k] = stats.PercentileSorted(sorted, r*100)
		}
		// keep the grid monotone against floating point noise
		for k := 1; k < nq; k++ {
			if qs[k] < qs[k-1] {
				qs[k] = qs[k-1]
			}
		}
		q.Quantiles[j] = qs
	}
	return nil
}

// TransformRow maps row into dst column by column.
func (q *QuantileTransformer) TransformRow(dst, row []float64) error {
	if len(row) != len(q.Quantiles) {
		return fmt.Errorf("quantile: got %d columns, want %d", len(row), len(q.Quantiles))
	}
	for j, v := range row {
		dst[j] = q.transformValue(j, v)
	}
	return nil
}

func (q *QuantileTransformer) transformValue(j int, v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	qs := q.Quantiles[j]
	lo, hi := qs[0], qs[len(qs)-1]

	var p float64
	switch {
	case v-boundsThreshold < lo:
		p = 0
	case v+boundsThreshold > hi:
		p = 1
	default:
		// average of the right- and left-continuous interpolations so that
		// repeated quantiles map to the middle of their reference span
		p = 0.5 * (stats.Interp(v, qs, q.References) + stats.InterpLeft(v, qs, q.References))
	}

	z := distuv.UnitNormal.Quantile(p)
	if z < -normalClip {
		return -normalClip
	}
	if z > normalClip {
		return normalClip
	}
	return z
}

// normalClip bounds the output to a finite range; the tails of the normal
// quantile function would otherwise produce +/- Inf at p = 0 and p = 1.
var normalClip = -distuv.UnitNormal.Quantile(boundsThreshold - 0x1p-52)
