package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// PopMeanStd returns the mean and the population (biased) standard deviation.
func PopMeanStd(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	m, v := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return m, math.Sqrt(v * (n - 1) / n)
}

// DropNaN returns the non-NaN values of x in their original order.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Median returns the median value of the slice (allocates a copy).
// Even-length input averages the two middle values.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// NanMedian is Median over the non-NaN values of x. It returns NaN when
// nothing is left.
func NanMedian(x []float64) float64 {
	return Median(DropNaN(x))
}

// Mode returns the most frequent value in the slice. Ties go to the value
// encountered first. ok is false for an empty slice.
func Mode[T comparable](x []T) (mode T, ok bool) {
	if len(x) == 0 {
		return mode, false
	}
	counts := make(map[T]int, len(x))
	order := make([]T, 0)
	for _, v := range x {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	best := -1
	for _, v := range order {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return mode, true
}

// Percentile returns the p-th percentile value of the slice (0 <= p <= 100)
// using linear interpolation between closest ranks.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	return PercentileSorted(cp, p)
}

// PercentileSorted is Percentile for input that is already sorted ascending.
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Interp maps x onto the piecewise-linear function through (xp, fp).
// xp must be ascending. Values outside [xp[0], xp[n-1]] clamp to the ends.
// When x hits a run of equal xp values the last point of the run wins.
func Interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return math.NaN()
	}
	if x < xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	hi := sort.Search(n, func(k int) bool { return xp[k] > x })
	lo := hi - 1
	if xp[lo] == x {
		return fp[lo]
	}
	t := (x - xp[lo]) / (xp[hi] - xp[lo])
	return fp[lo] + t*(fp[hi]-fp[lo])
}

// InterpLeft is Interp except that a run of equal xp values resolves to the
// first point of the run.
func InterpLeft(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return math.NaN()
	}
	if x <= xp[0] {
		return fp[0]
	}
	if x > xp[n-1] {
		return fp[n-1]
	}
	hi := sort.Search(n, func(k int) bool { return xp[k] >= x })
	if xp[hi] == x {
		return fp[hi]
	}
	lo := hi - 1
	t := (x - xp[lo]) / (xp[hi] - xp[lo])
	return fp[lo] + t*(fp[hi]-fp[lo])
}
