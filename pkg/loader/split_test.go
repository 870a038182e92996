package loader

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
)

func TestTrainTestSplit(t *testing.T) {
	rows := make([]int, 101)
	for i := range rows {
		rows[i] = i
	}
	train, test := TrainTestSplit(rows, 0.2, 42)
	assert.Len(t, test, 21)
	assert.Len(t, train, 80)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	assert.Equal(t, rows, all)

	train2, test2 := TrainTestSplit(rows, 0.2, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test3 := TrainTestSplit(rows, 0.2, 7)
	assert.NotEqual(t, test, test3)
}

func TestSplitIndices_Bounds(t *testing.T) {
	train, test := SplitIndices(5, 1.5, 1)
	assert.Empty(t, train)
	assert.Len(t, test, 5)

	train, test = SplitIndices(5, 0, 1)
	assert.Len(t, train, 5)
	assert.Empty(t, test)
}

func TestSplitFrame(t *testing.T) {
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{string(rune('a' + i))}
	}
	f, err := data.NewFrame([]string{"id"}, rows)
	require.NoError(t, err)

	train, test := SplitFrame(f, 0.2, 42)
	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, test.Len())
	assert.Equal(t, []string{"id"}, test.Header)
	assert.True(t, test.Has("id"))
}
