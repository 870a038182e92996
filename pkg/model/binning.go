package model

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// binMapper discretizes every feature into at most maxBin ordered bins.
// cuts[f][b] is the inclusive upper edge of bin b and the last edge is +Inf,
// so a value v falls in the first bin whose edge is >= v. Missing values go
// to the extra bin len(cuts[f]).
type binMapper struct {
	cuts [][]float64
}

func newBinMapper(ctx context.Context, X [][]float64, maxBin int) (*binMapper, error) {
	p := len(X[0])
	m := &binMapper{cuts: make([][]float64, p)}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for f := 0; f < p; f++ {
		f := f
		g.Go(func() error {
			m.cuts[f] = featureCuts(X, f, maxBin)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, ctx.Err()
}

func featureCuts(X [][]float64, f, maxBin int) []float64 {
	vals := make([]float64, 0, len(X))
	for _, row := range X {
		if !math.IsNaN(row[f]) {
			vals = append(vals, row[f])
		}
	}
	sort.Float64s(vals)

	distinct := vals[:0:0]
	for i, v := range vals {
		if i == 0 || v != vals[i-1] {
			distinct = append(distinct, v)
		}
	}

	cuts := make([]float64, 0, maxBin)
	if len(distinct) <= maxBin {
		for i := 1; i < len(distinct); i++ {
			cuts = append(cuts, (distinct[i-1]+distinct[i])/2)
		}
	} else {
		for k := 1; k < maxBin; k++ {
			c := stats.PercentileSorted(vals, 100*float64(k)/float64(maxBin))
			if len(cuts) == 0 || c > cuts[len(cuts)-1] {
				cuts = append(cuts, c)
			}
		}
	}
	return append(cuts, math.Inf(1))
}

func (m *binMapper) missingBin(f int) int { return len(m.cuts[f]) }

func (m *binMapper) bin(f int, v float64) int {
	if math.IsNaN(v) {
		return m.missingBin(f)
	}
	return sort.SearchFloat64s(m.cuts[f], v)
}

// transform returns the binned matrix in column-major order.
func (m *binMapper) transform(X [][]float64) [][]uint16 {
	out := make([][]uint16, len(m.cuts))
	for f := range m.cuts {
		col := make([]uint16, len(X))
		for i, row := range X {
			col[i] = uint16(m.bin(f, row[f]))
		}
		out[f] = col
	}
	return out
}
