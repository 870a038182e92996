package dataprep

// SmoothedRatio divides num by den+1. The +1 keeps the ratio finite when
// the denominator is zero; derived ratio features rely on this exact form.
func SmoothedRatio(num, den float64) float64 {
	return num / (den + 1)
}

// SelectColumns returns the columns of row at indices, in indices order.
func SelectColumns[T any](row []T, indices []int) []T {
	out := make([]T, len(indices))
	for j, idx := range indices {
		out[j] = row[idx]
	}
	return out
}
