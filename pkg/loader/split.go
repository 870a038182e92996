// Package loader partitions datasets for training and evaluation.
package loader

import (
	"math"
	"math/rand"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
)

// TrainTestSplit shuffles rows with seed and holds out ceil(n*testRatio) of
// them as the test set. The same seed always yields the same partition.
func TrainTestSplit[T any](rows []T, testRatio float64, seed int64) (train, test []T) {
	trainIdx, testIdx := SplitIndices(len(rows), testRatio, seed)
	train = make([]T, len(trainIdx))
	for k, i := range trainIdx {
		train[k] = rows[i]
	}
	test = make([]T, len(testIdx))
	for k, i := range testIdx {
		test[k] = rows[i]
	}
	return train, test
}

// SplitIndices returns the shuffled train and test row indices for n rows.
func SplitIndices(n int, testRatio float64, seed int64) (train, test []int) {
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest > n {
		nTest = n
	}
	return indices[nTest:], indices[:nTest]
}

// SplitFrame partitions f into train and test frames.
func SplitFrame(f *data.Frame, testRatio float64, seed int64) (train, test *data.Frame) {
	trainIdx, testIdx := SplitIndices(f.Len(), testRatio, seed)
	return f.Subset(trainIdx), f.Subset(testIdx)
}
